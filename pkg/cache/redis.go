package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-listings/pkg/types"
	"github.com/redis/go-redis/v9"
)

// RedisCache shares snapshots between replicas. Keys embed a generation
// number; Invalidate bumps it so old entries are never read again and expire
// on their own.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisCacheFromClient(rdb, "facets", ttl)
}

func NewRedisCacheFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) generationKey() string {
	return c.prefix + ":generation"
}

func (c *RedisCache) key(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read cache generation: %w", err)
	}
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, key), nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*types.FacetSnapshot, bool, error) {
	k, err := c.key(ctx, key)
	if err != nil {
		return nil, false, err
	}
	data, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	snapshot := &types.FacetSnapshot{}
	if err := sonic.Unmarshal(data, snapshot); err != nil {
		return nil, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snapshot, true, nil
}

// Reserve resolves the generation qualified key up front. A commit after an
// Invalidate lands under the old generation and is never read.
func (c *RedisCache) Reserve(ctx context.Context, key string) (Commit, error) {
	k, err := c.key(ctx, key)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, snapshot *types.FacetSnapshot) error {
		data, err := sonic.Marshal(snapshot)
		if err != nil {
			return err
		}
		return c.client.Set(ctx, k, data, c.ttl).Err()
	}, nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
