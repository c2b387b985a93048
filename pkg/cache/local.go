package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/matst80/slask-listings/pkg/types"
)

// LocalCache is a size bounded in process cache with a fixed TTL per entry.
type LocalCache struct {
	mu    sync.Mutex
	epoch uint64
	lru   *expirable.LRU[string, *types.FacetSnapshot]
}

func NewLocalCache(size int, ttl time.Duration) *LocalCache {
	return &LocalCache{
		lru: expirable.NewLRU[string, *types.FacetSnapshot](size, nil, ttl),
	}
}

func (c *LocalCache) Get(_ context.Context, key string) (*types.FacetSnapshot, bool, error) {
	snapshot, ok := c.lru.Get(key)
	return snapshot, ok, nil
}

func (c *LocalCache) Reserve(_ context.Context, key string) (Commit, error) {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()
	return func(_ context.Context, snapshot *types.FacetSnapshot) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch == epoch {
			c.lru.Add(key, snapshot)
		}
		return nil
	}, nil
}

func (c *LocalCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.lru.Purge()
	return nil
}

func (c *LocalCache) Len() int {
	return c.lru.Len()
}

func (c *LocalCache) Close() error {
	c.lru.Purge()
	return nil
}
