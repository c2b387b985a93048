package facet

import (
	"context"
	"fmt"
	"time"

	"github.com/matst80/slask-listings/pkg/store"
	"github.com/matst80/slask-listings/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	facetDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slasklistings_facet_duration_seconds",
		Help:    "Time spent computing one facet snapshot",
		Buckets: prometheus.DefBuckets,
	})
	facetErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklistings_facet_errors_total",
		Help: "The total number of failed facet computations",
	})
)

type SnapshotProvider interface {
	ComputeFacets(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error)
}

type EngineOptions struct {
	// MaxConcurrency caps parallel store reads per call, zero means no limit.
	MaxConcurrency int
}

// Engine computes facet snapshots from store reads only. It holds no state
// between calls.
type Engine struct {
	store store.ListingStore
	opts  EngineOptions
}

func NewEngine(s store.ListingStore, opts EngineOptions) *Engine {
	return &Engine{store: s, opts: opts}
}

type dimensionCounts struct {
	universe  map[string]int
	reachable map[string]int
}

func (e *Engine) ComputeFacets(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error) {
	start := time.Now()
	defer func() {
		facetDuration.Observe(time.Since(start).Seconds())
	}()

	sel = sel.Clone()
	sel.Normalize()
	scoped := sel.ScopeCategory != ""

	base := types.ListingFilter{}
	if scoped {
		base.Categories = []string{sel.ScopeCategory}
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.opts.MaxConcurrency > 0 {
		g.SetLimit(e.opts.MaxConcurrency)
	}

	var total int
	var extent store.PriceExtent
	counts := make([]dimensionCounts, len(types.FacetDimensions))

	g.Go(func() error {
		var err error
		total, err = e.store.Count(gctx, sel.Filter())
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		extent, err = e.store.PriceExtent(gctx, sel.FilterWithout(types.DimensionPrice))
		if err != nil {
			return fmt.Errorf("price extent: %w", err)
		}
		return nil
	})

	for i, d := range types.FacetDimensions {
		if d == types.DimensionCategory && scoped {
			continue
		}
		g.Go(func() error {
			reachable, err := e.store.GroupCount(gctx, d, sel.FilterWithout(d))
			if err != nil {
				return fmt.Errorf("group %s: %w", d, err)
			}
			counts[i].reachable = reachable
			return nil
		})
		g.Go(func() error {
			universe, err := e.store.GroupCount(gctx, d, base)
			if err != nil {
				return fmt.Errorf("values %s: %w", d, err)
			}
			counts[i].universe = universe
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		facetErrors.Inc()
		return nil, err
	}

	allAvailable := !sel.HasAnyNonDefaultFilter() && sel.SearchText == ""
	snapshot := &types.FacetSnapshot{
		TotalCount:             total,
		HasAnyNonDefaultFilter: sel.HasAnyNonDefaultFilter(),
	}
	for i, d := range types.FacetDimensions {
		if d == types.DimensionCategory && scoped {
			snapshot.Categories = []types.FacetOption{{
				Value:     sel.ScopeCategory,
				Count:     total,
				Available: true,
			}}
			continue
		}
		snapshot.SetOptions(d, buildOptions(d, counts[i], sel.Selected(d), allAvailable))
	}

	min, max := types.FallbackPriceMin, types.FallbackPriceMax
	if extent.Count > 0 {
		min, max = extent.Min, extent.Max
	}
	snapshot.PriceRange = types.NewPriceRange(min, max, &sel)
	return snapshot, nil
}
