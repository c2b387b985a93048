package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matst80/slask-listings/pkg/facet"
	"github.com/matst80/slask-listings/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchReply struct {
	snapshot *types.FacetSnapshot
	err      error
}

type fetchCall struct {
	ctx   context.Context
	sel   types.FilterSelection
	reply chan fetchReply
}

func (c *fetchCall) respond(total int) {
	c.reply <- fetchReply{snapshot: snapshotWithRange(total, 0, 5_000_000)}
}

func (c *fetchCall) fail(err error) {
	c.reply <- fetchReply{err: err}
}

// gatedFetcher holds every request until the test answers it and ignores
// cancellation, so late responses can be played back in any order.
type gatedFetcher struct {
	mu    sync.Mutex
	calls []*fetchCall
	next  chan *fetchCall
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{next: make(chan *fetchCall, 32)}
}

func (f *gatedFetcher) FetchFacets(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error) {
	call := &fetchCall{ctx: ctx, sel: sel, reply: make(chan fetchReply, 1)}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	f.next <- call
	r := <-call.reply
	return r.snapshot, r.err
}

func (f *gatedFetcher) await(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case call := <-f.next:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected a facet request")
	}
	return nil
}

func (f *gatedFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type viewRecorder struct {
	mu    sync.Mutex
	views []View
}

func (r *viewRecorder) record(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *viewRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = nil
}

func (r *viewRecorder) sawLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.views {
		if v.Loading {
			return true
		}
	}
	return false
}

func snapshotTotal(c *Controller) int {
	if s := c.View().Snapshot; s != nil {
		return s.TotalCount
	}
	return -1
}

func newTestController(t *testing.T, f Fetcher, opts Options) *Controller {
	t.Helper()
	opts.Fetcher = f
	if opts.Sink == nil {
		opts.Sink = CallbackSink(func(types.FilterSelection) {})
	}
	c, err := NewController(opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestControllerNeedsFetcherAndSink(t *testing.T) {
	_, err := NewController(Options{Sink: CallbackSink(func(types.FilterSelection) {})})
	assert.Error(t, err)
	_, err = NewController(Options{Fetcher: newGatedFetcher()})
	assert.Error(t, err)
}

func TestControllerLateResponseIsDropped(t *testing.T) {
	f := newGatedFetcher()
	c := newTestController(t, f, Options{})
	f.await(t).respond(10)
	assert.Eventually(t, func() bool { return snapshotTotal(c) == 10 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Refresh())
	first := f.await(t)
	require.NoError(t, c.Refresh())
	second := f.await(t)

	assert.Error(t, first.ctx.Err(), "superseded request is cancelled")
	second.respond(3)
	assert.Eventually(t, func() bool { return snapshotTotal(c) == 3 }, time.Second, 5*time.Millisecond)

	first.respond(2)
	assert.Never(t, func() bool { return snapshotTotal(c) == 2 }, 100*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, RequestToken(3), c.View().Token)
}

func TestControllerLoadingGrace(t *testing.T) {
	f := newGatedFetcher()
	rec := &viewRecorder{}
	c := newTestController(t, f, Options{LoadingGrace: 150 * time.Millisecond, OnChange: rec.record})

	assert.True(t, c.View().Loading, "first request shows loading at once")
	assert.Equal(t, StateInitializing, c.State())
	f.await(t).respond(5)
	assert.Eventually(t, func() bool { return !c.View().Loading && c.State() == StateIdle }, time.Second, 5*time.Millisecond)

	rec.reset()
	require.NoError(t, c.Refresh())
	f.await(t).respond(6)
	assert.Eventually(t, func() bool { return snapshotTotal(c) == 6 }, time.Second, 5*time.Millisecond)
	assert.False(t, rec.sawLoading(), "fast response never shows loading")

	require.NoError(t, c.Refresh())
	slow := f.await(t)
	assert.Equal(t, StateFetching, c.State())
	assert.Eventually(t, func() bool { return c.View().Loading }, time.Second, 5*time.Millisecond)
	slow.respond(7)
	assert.Eventually(t, func() bool { return !c.View().Loading && snapshotTotal(c) == 7 }, time.Second, 5*time.Millisecond)
}

func TestControllerErrorKeepsSnapshot(t *testing.T) {
	f := newGatedFetcher()
	c := newTestController(t, f, Options{})
	f.await(t).respond(8)
	assert.Eventually(t, func() bool { return snapshotTotal(c) == 8 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Refresh())
	f.await(t).fail(errors.New("backend down"))
	assert.Eventually(t, func() bool { return c.State() == StateIdle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 8, snapshotTotal(c))
	assert.False(t, c.View().Loading)
}

func TestControllerFailedFirstRequest(t *testing.T) {
	f := newGatedFetcher()
	c := newTestController(t, f, Options{})
	f.await(t).fail(errors.New("backend down"))
	assert.Eventually(t, func() bool { return c.State() == StateIdle }, time.Second, 5*time.Millisecond)
	assert.Nil(t, c.View().Snapshot)

	require.NoError(t, c.Refresh())
	assert.True(t, c.View().Loading)
	assert.Equal(t, StateInitializing, c.State())
}

func TestControllerDebounceClassesAreIndependent(t *testing.T) {
	f := newGatedFetcher()
	c := newTestController(t, f, Options{
		SelectionDelay: 20 * time.Millisecond,
		SearchDelay:    250 * time.Millisecond,
	})
	f.await(t).respond(4)

	require.NoError(t, c.SetSearchText("garden"))
	assert.Equal(t, StateDebouncing, c.State())
	require.NoError(t, c.SetDimensionValue(types.DimensionDistrict, "A"))
	assert.Equal(t, "garden", c.View().Selection.SearchText, "edits are visible at once")

	start := time.Now()
	call := f.await(t)
	assert.Less(t, time.Since(start), 200*time.Millisecond, "selection edit is not held back by the search delay")
	assert.Equal(t, []string{"A"}, call.sel.Districts)
	call.respond(2)

	f.await(t).respond(1)
	assert.Eventually(t, func() bool { return snapshotTotal(c) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, f.count())
}

func TestControllerInvalidPriceDoesNotFetch(t *testing.T) {
	f := newGatedFetcher()
	c := newTestController(t, f, Options{PriceDelay: 10 * time.Millisecond})
	f.await(t).respond(4)
	assert.Eventually(t, func() bool { return c.State() == StateIdle }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.SetPrice(PriceMin, "abc"))
	assert.Equal(t, StateIdle, c.State())
	assert.Never(t, func() bool { return f.count() > 1 }, 80*time.Millisecond, 10*time.Millisecond)
}

func TestControllerURLSinkApplyAndReset(t *testing.T) {
	nav := NewHistoryNavigator(mustParse(t, "/listings?returnUrl=%2Fhome&from=map&district=B"))
	engine := facet.NewEngine(fixtureStore(t), facet.EngineOptions{})
	c := newTestController(t, EngineFetcher{Provider: engine}, Options{Sink: &URLSink{Navigator: nav}})
	assert.Equal(t, []string{"B"}, c.View().Selection.Districts, "seeded from the url")
	assert.Eventually(t, func() bool { return c.View().Snapshot != nil }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.SetDimensionValue(types.DimensionDistrict, "A"))
	require.NoError(t, c.Apply())
	q := nav.Current().Query()
	assert.Equal(t, []string{"A", "B"}, q["district"])
	assert.Equal(t, "/home", q.Get("returnUrl"))
	assert.Equal(t, "map", q.Get("from"))
	assert.Eventually(t, func() bool { return snapshotTotal(c) == 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Reset())
	u := nav.Current()
	assert.Equal(t, "/listings", u.Path)
	assert.Equal(t, "from=map&returnUrl=%2Fhome", u.RawQuery)
	assert.False(t, c.View().HasFiltersApplied)
	assert.Len(t, nav.History(), 3)
}

func TestControllerCallbackSink(t *testing.T) {
	var committed []types.FilterSelection
	f := newGatedFetcher()
	c := newTestController(t, f, Options{Sink: CallbackSink(func(sel types.FilterSelection) {
		committed = append(committed, sel)
	})})
	f.await(t).respond(4)

	require.NoError(t, c.SetPrice(PriceMax, "2 000 000"))
	require.NoError(t, c.Apply())
	f.await(t).respond(2)
	require.Len(t, committed, 1)
	assert.True(t, committed[0].PriceMax.Enforced())
	assert.Equal(t, 2_000_000.0, committed[0].PriceMax.Value)
	assert.True(t, committed[0].PriceMin.Enforced(), "price touched before apply binds both sides")
}

func TestControllerSharedDealType(t *testing.T) {
	shared := NewDealTypeContext(types.DealSale)
	engine := facet.NewEngine(fixtureStore(t), facet.EngineOptions{})
	opts := Options{DealType: shared, SelectionDelay: 10 * time.Millisecond}
	a := newTestController(t, EngineFetcher{Provider: engine}, opts)
	b := newTestController(t, EngineFetcher{Provider: engine}, opts)

	require.NoError(t, a.SetDealType(types.DealRent))
	assert.Equal(t, types.DealRent, a.View().Selection.DealType)
	assert.Equal(t, types.DealRent, shared.Get())
	assert.Eventually(t, func() bool {
		v := b.View()
		return v.Selection.DealType == types.DealRent && v.Snapshot != nil && v.Snapshot.TotalCount == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, b.Reset())
	assert.Eventually(t, func() bool { return a.View().Selection.DealType == types.DealSale }, time.Second, 5*time.Millisecond)
}

func TestControllerSharedDealTypeConverges(t *testing.T) {
	shared := NewDealTypeContext(types.DealSale)
	engine := facet.NewEngine(fixtureStore(t), facet.EngineOptions{})
	opts := Options{DealType: shared, SelectionDelay: 10 * time.Millisecond}
	a := newTestController(t, EngineFetcher{Provider: engine}, opts)
	others := []*Controller{
		newTestController(t, EngineFetcher{Provider: engine}, opts),
		newTestController(t, EngineFetcher{Provider: engine}, opts),
	}

	for i := 0; i < 50; i++ {
		dt := types.DealRent
		if i%2 == 1 {
			dt = types.DealSale
		}
		require.NoError(t, a.SetDealType(dt))
	}
	require.NoError(t, a.SetDealType(types.DealRent))

	assert.Equal(t, types.DealRent, shared.Get())
	for _, c := range append(others, a) {
		assert.Eventually(t, func() bool {
			return c.View().Selection.DealType == shared.Get()
		}, time.Second, 5*time.Millisecond)
	}
}

func TestControllerSeedsFromSharedDealType(t *testing.T) {
	shared := NewDealTypeContext(types.DealRent)
	f := newGatedFetcher()
	initial := types.NewSelection()
	newTestController(t, f, Options{DealType: shared, Initial: &initial})
	assert.Equal(t, types.DealRent, f.await(t).sel.DealType)
}

func TestControllerClose(t *testing.T) {
	f := newGatedFetcher()
	c, err := NewController(Options{Fetcher: f, Sink: CallbackSink(func(types.FilterSelection) {})})
	require.NoError(t, err)
	call := f.await(t)

	require.NoError(t, c.Close())
	select {
	case <-call.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected in-flight request to be cancelled")
	}
	call.respond(1)

	assert.Equal(t, StateClosed, c.State())
	assert.ErrorIs(t, c.SetSearchText("x"), ErrClosed)
	assert.ErrorIs(t, c.Refresh(), ErrClosed)
	assert.ErrorIs(t, c.Apply(), ErrClosed)
	assert.NoError(t, c.Close())
	assert.Nil(t, c.View().Snapshot)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "debouncing", StateDebouncing.String())
	assert.Equal(t, "unknown", State(42).String())
}
