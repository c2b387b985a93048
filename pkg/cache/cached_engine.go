package cache

import (
	"context"
	"log"

	"github.com/matst80/slask-listings/pkg/facet"
	"github.com/matst80/slask-listings/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklistings_cache_hits_total",
		Help: "The total number of facet snapshots served from cache",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklistings_cache_misses_total",
		Help: "The total number of facet snapshots computed on a cache miss",
	})
)

// CachedEngine serves snapshots from a TTL cache keyed by the canonical
// selection. Failed computations are never cached, and neither are
// snapshots whose computation overlapped an Invalidate.
type CachedEngine struct {
	provider facet.SnapshotProvider
	cache    SnapshotCache
}

func NewCachedEngine(provider facet.SnapshotProvider, cache SnapshotCache) *CachedEngine {
	return &CachedEngine{provider: provider, cache: cache}
}

func (e *CachedEngine) ComputeFacets(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error) {
	sel = sel.Clone()
	sel.Normalize()
	key := sel.CacheKey()
	snapshot, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		log.Printf("facet cache get failed: %v", err)
	}
	if ok {
		cacheHits.Inc()
		return snapshot, nil
	}
	cacheMisses.Inc()
	commit, err := e.cache.Reserve(ctx, key)
	if err != nil {
		log.Printf("facet cache reserve failed: %v", err)
	}
	snapshot, err = e.provider.ComputeFacets(ctx, sel)
	if err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(ctx, snapshot); err != nil {
			log.Printf("facet cache set failed: %v", err)
		}
	}
	return snapshot, nil
}

func (e *CachedEngine) Invalidate(ctx context.Context) error {
	return e.cache.Invalidate(ctx)
}
