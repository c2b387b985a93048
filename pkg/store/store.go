package store

import (
	"context"

	"github.com/matst80/slask-listings/pkg/types"
)

// PriceExtent is the min/max price over a filtered set. Count is zero when the
// set is empty and Min/Max are then meaningless.
type PriceExtent struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// ListingStore is the read surface the facet engine needs. Only active
// listings are visible through it.
type ListingStore interface {
	Count(ctx context.Context, filter types.ListingFilter) (int, error)
	GroupCount(ctx context.Context, field types.Dimension, filter types.ListingFilter) (map[string]int, error)
	PriceExtent(ctx context.Context, filter types.ListingFilter) (PriceExtent, error)
}

type ListingWriter interface {
	UpsertListings(ctx context.Context, listings ...types.Listing) error
	DeleteListings(ctx context.Context, ids ...types.ListingId) error
}
