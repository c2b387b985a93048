package cache

import (
	"context"
	"errors"

	"github.com/matst80/slask-listings/pkg/types"
)

// Commit stores a snapshot under the key it was reserved for. It drops the
// snapshot when the cache was invalidated after the reservation.
type Commit func(ctx context.Context, snapshot *types.FacetSnapshot) error

// SnapshotCache stores finished snapshots by selection cache key. Cached
// snapshots are shared and must not be modified.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*types.FacetSnapshot, bool, error)
	// Reserve pins the current generation for key. Call it before reading the
	// data the snapshot is computed from.
	Reserve(ctx context.Context, key string) (Commit, error)
	// Invalidate drops every entry, called after listing writes.
	Invalidate(ctx context.Context) error
	Close() error
}

// Tiered checks caches in order and back fills the earlier tiers on a hit.
type Tiered []SnapshotCache

func (t Tiered) Get(ctx context.Context, key string) (*types.FacetSnapshot, bool, error) {
	var errs []error
	fill := make([]Commit, 0, len(t))
	for i, c := range t {
		snapshot, ok, err := c.Get(ctx, key)
		if err != nil {
			errs = append(errs, err)
		} else if ok {
			for _, earlier := range fill {
				if err := earlier(ctx, snapshot); err != nil {
					errs = append(errs, err)
				}
			}
			return snapshot, true, errors.Join(errs...)
		}
		if i == len(t)-1 {
			break
		}
		commit, err := c.Reserve(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fill = append(fill, commit)
	}
	return nil, false, errors.Join(errs...)
}

func (t Tiered) Reserve(ctx context.Context, key string) (Commit, error) {
	var errs []error
	commits := make([]Commit, 0, len(t))
	for _, c := range t {
		commit, err := c.Reserve(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		commits = append(commits, commit)
	}
	return func(ctx context.Context, snapshot *types.FacetSnapshot) error {
		var errs []error
		for _, commit := range commits {
			errs = append(errs, commit(ctx, snapshot))
		}
		return errors.Join(errs...)
	}, errors.Join(errs...)
}

func (t Tiered) Invalidate(ctx context.Context) error {
	var errs []error
	for _, c := range t {
		errs = append(errs, c.Invalidate(ctx))
	}
	return errors.Join(errs...)
}

func (t Tiered) Close() error {
	var errs []error
	for _, c := range t {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
