package client

import (
	"sync"

	"github.com/matst80/slask-listings/pkg/types"
)

// DealTypeContext is a deal type shared by every controller on a page.
// Setting it notifies all subscribers, including the one that set it.
type DealTypeContext struct {
	mu    sync.Mutex
	value types.DealType
	subs  map[uint64]func(types.DealType)
	next  uint64
}

func NewDealTypeContext(initial types.DealType) *DealTypeContext {
	if !initial.Valid() {
		initial = types.DefaultDealType
	}
	return &DealTypeContext{value: initial, subs: make(map[uint64]func(types.DealType))}
}

func (c *DealTypeContext) Get() types.DealType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set stores dt and notifies subscribers when it changed. Subscribers run on
// the calling goroutine.
func (c *DealTypeContext) Set(dt types.DealType) bool {
	if !dt.Valid() {
		return false
	}
	c.mu.Lock()
	if c.value == dt {
		c.mu.Unlock()
		return false
	}
	c.value = dt
	subs := make([]func(types.DealType), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(dt)
	}
	return true
}

func (c *DealTypeContext) Subscribe(fn func(types.DealType)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}
