package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-listings/pkg/types"
)

var ErrClosed = errors.New("controller is closed")

const (
	DefaultSelectionDelay = 300 * time.Millisecond
	DefaultSearchDelay    = 400 * time.Millisecond
	DefaultPriceDelay     = 500 * time.Millisecond
	DefaultLoadingGrace   = 200 * time.Millisecond
)

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateIdle
	StateDebouncing
	StateFetching
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateFetching:
		return "fetching"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// View is a copy of the controller state for rendering.
type View struct {
	Selection         types.FilterSelection
	Snapshot          *types.FacetSnapshot
	Loading           bool
	State             State
	Token             RequestToken
	HasFiltersApplied bool
}

type Options struct {
	Fetcher Fetcher
	Sink    CommitSink
	// DealType is shared with other controllers on the page, optional.
	DealType *DealTypeContext
	// Initial seeds the selection. When nil and Sink is a *URLSink the
	// current URL is parsed instead.
	Initial *types.FilterSelection
	Scope   string

	SelectionDelay time.Duration
	SearchDelay    time.Duration
	PriceDelay     time.Duration
	LoadingGrace   time.Duration

	// OnChange runs on the event loop after every state change. It must not
	// block or call back into the controller.
	OnChange func(View)
}

func (o *Options) withDefaults() {
	if o.SelectionDelay <= 0 {
		o.SelectionDelay = DefaultSelectionDelay
	}
	if o.SearchDelay <= 0 {
		o.SearchDelay = DefaultSearchDelay
	}
	if o.PriceDelay <= 0 {
		o.PriceDelay = DefaultPriceDelay
	}
	if o.LoadingGrace <= 0 {
		o.LoadingGrace = DefaultLoadingGrace
	}
}

// Controller keeps a Session in sync with the facet engine. All session
// access happens on a single event loop goroutine; public methods post onto
// it and wait.
type Controller struct {
	Id   string
	opts Options

	events    chan func()
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc

	// owned by the loop
	session      *Session
	closed       bool
	inflight     *CancellableRequest
	loadingTimer *time.Timer
	selection    *DebouncedTrigger
	search       *DebouncedTrigger
	price        *DebouncedTrigger
	unsubscribe  func()

	view atomic.Pointer[View]
}

func seed(opts *Options) types.FilterSelection {
	if opts.Initial != nil {
		sel := opts.Initial.Clone()
		if opts.Scope != "" {
			sel.ScopeCategory = opts.Scope
		}
		return sel
	}
	if sink, ok := opts.Sink.(*URLSink); ok && sink.Navigator != nil {
		return ParseURL(sink.Navigator.Current(), opts.Scope)
	}
	sel := types.NewSelection()
	sel.ScopeCategory = opts.Scope
	return sel
}

// NewController seeds the session and issues the first fetch.
func NewController(opts Options) (*Controller, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("controller needs a fetcher")
	}
	if opts.Sink == nil {
		return nil, errors.New("controller needs a commit sink")
	}
	opts.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		Id:      uuid.NewString(),
		opts:    opts,
		events:  make(chan func(), 64),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.view.Store(&View{State: StateUninitialized})
	c.selection = NewDebouncedTrigger(opts.SelectionDelay, c.postRefresh)
	c.search = NewDebouncedTrigger(opts.SearchDelay, c.postRefresh)
	c.price = NewDebouncedTrigger(opts.PriceDelay, c.postRefresh)

	go c.loop()

	err := c.do(func() {
		sel := seed(&c.opts)
		if c.opts.DealType != nil {
			sel.DealType = c.opts.DealType.Get()
			c.unsubscribe = c.opts.DealType.Subscribe(func(types.DealType) {
				// may be called from the loop itself. The posts can run out of
				// order, so read the latest value instead of the notified one.
				go c.post(func() {
					if c.closed {
						return
					}
					if c.session.SetDealType(c.opts.DealType.Get()) {
						c.selection.Trigger()
						c.publish()
					}
				})
			})
		}
		c.session = NewSession(sel)
		c.refresh()
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) loop() {
	defer close(c.stopped)
	for {
		select {
		case fn := <-c.events:
			fn()
		case <-c.quit:
			return
		}
	}
}

// post queues fn on the loop, dropping it once the controller is closed.
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.quit:
	}
}

// do runs fn on the loop and waits for it.
func (c *Controller) do(fn func()) error {
	done := make(chan struct{})
	ran := false
	select {
	case c.events <- func() {
		defer close(done)
		if c.closed {
			return
		}
		ran = true
		fn()
	}:
	case <-c.quit:
		return ErrClosed
	}
	select {
	case <-done:
	case <-c.quit:
		select {
		case <-done:
		default:
			return ErrClosed
		}
	}
	if !ran {
		return ErrClosed
	}
	return nil
}

func (c *Controller) postRefresh() {
	c.post(c.refresh)
}

func (c *Controller) stopLoadingTimer() {
	if c.loadingTimer != nil {
		c.loadingTimer.Stop()
		c.loadingTimer = nil
	}
}

// refresh supersedes any in-flight request with one for the current
// selection.
func (c *Controller) refresh() {
	if c.closed {
		return
	}
	token := c.session.MintToken()
	if c.inflight != nil {
		c.inflight.Cancel()
	}
	c.stopLoadingTimer()
	if !c.session.Initialized {
		c.session.Loading = true
	} else {
		c.loadingTimer = time.AfterFunc(c.opts.LoadingGrace, func() {
			c.post(func() {
				if c.inflight != nil && c.inflight.Token == token && !c.session.Loading {
					c.session.Loading = true
					c.publish()
				}
			})
		})
	}
	sel := c.session.Selection.Clone()
	c.inflight = StartRequest(c.ctx, token, func(ctx context.Context) (*types.FacetSnapshot, error) {
		return c.opts.Fetcher.FetchFacets(ctx, sel)
	}, func(token RequestToken, snapshot *types.FacetSnapshot, err error) {
		c.post(func() {
			c.complete(token, snapshot, err)
		})
	})
	c.publish()
}

func (c *Controller) complete(token RequestToken, snapshot *types.FacetSnapshot, err error) {
	if c.closed || token != c.session.LatestToken() {
		return
	}
	c.inflight = nil
	c.stopLoadingTimer()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("facet refresh %d failed for %s: %v", token, c.Id, err)
		}
		c.session.Loading = false
	} else {
		c.session.ReceiveSnapshot(snapshot, token)
	}
	c.publish()
}

func (c *Controller) state() State {
	switch {
	case c.closed:
		return StateClosed
	case c.session == nil:
		return StateUninitialized
	case c.selection.Pending() || c.search.Pending() || c.price.Pending():
		return StateDebouncing
	case c.inflight != nil && !c.session.Initialized:
		return StateInitializing
	case c.inflight != nil:
		return StateFetching
	}
	return StateIdle
}

func (c *Controller) publish() {
	v := &View{State: c.state()}
	if c.session != nil {
		v.Selection = c.session.Selection.Clone()
		v.Snapshot = c.session.Confirmed
		v.Loading = c.session.Loading
		v.Token = c.session.LatestToken()
		v.HasFiltersApplied = c.session.HasFiltersApplied()
	}
	c.view.Store(v)
	if c.opts.OnChange != nil {
		c.opts.OnChange(*v)
	}
}

func (c *Controller) View() View {
	return *c.view.Load()
}

func (c *Controller) State() State {
	return c.view.Load().State
}

func (c *Controller) edit(trigger *DebouncedTrigger, fn func(s *Session) bool) error {
	return c.do(func() {
		if fn(c.session) {
			trigger.Trigger()
			c.publish()
		}
	})
}

func (c *Controller) SetDimensionValue(d types.Dimension, value string) error {
	if d == types.DimensionDealType {
		dt, ok := types.ParseDealType(value)
		if !ok {
			return nil
		}
		return c.SetDealType(dt)
	}
	return c.edit(c.selection, func(s *Session) bool {
		return s.SetDimensionValue(d, value)
	})
}

// SetDealType goes through the shared context when there is one so every
// controller on the page follows.
func (c *Controller) SetDealType(dt types.DealType) error {
	err := c.edit(c.selection, func(s *Session) bool {
		return s.SetDealType(dt)
	})
	if err == nil && c.opts.DealType != nil {
		c.opts.DealType.Set(dt)
	}
	return err
}

func (c *Controller) SetSearchText(text string) error {
	return c.edit(c.search, func(s *Session) bool {
		return s.SetSearchText(text)
	})
}

func (c *Controller) SetPrice(side PriceSide, raw string) error {
	return c.edit(c.price, func(s *Session) bool {
		return s.SetPrice(side, raw)
	})
}

func (c *Controller) SetPriceRange(minValue, maxValue float64) error {
	return c.edit(c.price, func(s *Session) bool {
		return s.SetPriceRange(minValue, maxValue)
	})
}

func (c *Controller) cancelTriggers() {
	c.selection.Cancel()
	c.search.Cancel()
	c.price.Cancel()
}

// Apply commits the selection through the sink and refreshes at once.
func (c *Controller) Apply() error {
	var commitErr error
	err := c.do(func() {
		sel := c.session.Apply()
		commitErr = c.opts.Sink.Commit(sel)
		c.cancelTriggers()
		c.refresh()
	})
	return errors.Join(err, commitErr)
}

// Reset clears the filters, commits the cleared selection and refreshes.
func (c *Controller) Reset() error {
	var commitErr error
	err := c.do(func() {
		c.session.Reset()
		commitErr = c.opts.Sink.Commit(c.session.Selection.Clone())
		c.cancelTriggers()
		if c.opts.DealType != nil {
			c.opts.DealType.Set(c.session.Selection.DealType)
		}
		c.refresh()
	})
	return errors.Join(err, commitErr)
}

// Refresh fetches now, dropping pending debounced edits into this request.
func (c *Controller) Refresh() error {
	return c.do(func() {
		c.cancelTriggers()
		c.refresh()
	})
}

// Close aborts the outstanding request and stops all timers. Later calls
// return ErrClosed.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		done := make(chan struct{})
		c.post(func() {
			defer close(done)
			c.cancelTriggers()
			c.stopLoadingTimer()
			if c.inflight != nil {
				c.inflight.Cancel()
				c.inflight = nil
			}
			if c.unsubscribe != nil {
				c.unsubscribe()
			}
			c.cancel()
			c.closed = true
			if c.session != nil {
				c.session.Loading = false
			}
			c.publish()
		})
		<-done
		close(c.quit)
		<-c.stopped
	})
	return nil
}
