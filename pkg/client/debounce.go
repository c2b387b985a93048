package client

import (
	"sync"
	"time"
)

// DebouncedTrigger runs fn once delay has passed without another Trigger.
// Each trigger owns its timer so independent input classes never wait on
// each other.
type DebouncedTrigger struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
	gen   uint64
}

func NewDebouncedTrigger(delay time.Duration, fn func()) *DebouncedTrigger {
	return &DebouncedTrigger{delay: delay, fn: fn}
}

// Trigger cancels the pending run, if any, and schedules a new one.
func (d *DebouncedTrigger) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			// a later Trigger or Cancel won the race with Stop
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fn()
	})
}

// Cancel drops the pending run and reports whether there was one.
func (d *DebouncedTrigger) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

func (d *DebouncedTrigger) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
