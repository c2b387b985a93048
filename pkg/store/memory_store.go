package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/matst80/slask-listings/pkg/search"
	"github.com/matst80/slask-listings/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	totalListings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slasklistings_listings_total",
		Help: "The total number of listings in the store",
	})
	activeListings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slasklistings_active_listings_total",
		Help: "The number of active listings visible to facet queries",
	})
)

var ErrClosed = errors.New("store is closed")

var groupedFields = []types.Dimension{
	types.DimensionCategory,
	types.DimensionDistrict,
	types.DimensionCondition,
	types.DimensionRooms,
	types.DimensionDealType,
}

// MemoryStore keeps every listing in memory with one roaring bitmap per
// field value. Reads take a read lock; writers are serialized.
type MemoryStore struct {
	mu       sync.RWMutex
	listings map[types.ListingId]*types.Listing
	active   *roaring.Bitmap
	fields   map[types.Dimension]map[string]*roaring.Bitmap
	search   *search.FreeTextIndex
	closed   atomic.Bool
}

func NewMemoryStore() *MemoryStore {
	fields := make(map[types.Dimension]map[string]*roaring.Bitmap, len(groupedFields))
	for _, d := range groupedFields {
		fields[d] = make(map[string]*roaring.Bitmap)
	}
	return &MemoryStore{
		listings: make(map[types.ListingId]*types.Listing),
		active:   roaring.New(),
		fields:   fields,
		search:   search.NewFreeTextIndex(search.DefaultFreeTextIndexOptions()),
	}
}

func (s *MemoryStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

// Close makes every later read and write fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *MemoryStore) addUnsafe(l *types.Listing) {
	s.listings[l.Id] = l
	if !l.IsActive() {
		return
	}
	s.active.Add(l.Id)
	for _, d := range groupedFields {
		value, ok := l.FieldValue(d)
		if !ok {
			continue
		}
		if ids, ok := s.fields[d][value]; ok {
			ids.Add(l.Id)
		} else {
			s.fields[d][value] = roaring.BitmapOf(l.Id)
		}
	}
	s.search.AddDocument(l.Id, l.ToStringList()...)
}

func (s *MemoryStore) removeUnsafe(id types.ListingId) {
	l, ok := s.listings[id]
	if !ok {
		return
	}
	delete(s.listings, id)
	s.active.Remove(id)
	for _, d := range groupedFields {
		value, ok := l.FieldValue(d)
		if !ok {
			continue
		}
		if ids, ok := s.fields[d][value]; ok {
			ids.Remove(id)
			if ids.IsEmpty() {
				delete(s.fields[d], value)
			}
		}
	}
	s.search.RemoveDocument(id)
}

func (s *MemoryStore) updateGauges() {
	totalListings.Set(float64(len(s.listings)))
	activeListings.Set(float64(s.active.GetCardinality()))
}

func (s *MemoryStore) UpsertListings(ctx context.Context, listings ...types.Listing) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	for i := range listings {
		if !listings[i].DealType.Valid() {
			return fmt.Errorf("listing %d: invalid deal type %q", listings[i].Id, listings[i].DealType)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range listings {
		l := listings[i]
		s.removeUnsafe(l.Id)
		s.addUnsafe(&l)
	}
	s.updateGauges()
	return nil
}

func (s *MemoryStore) DeleteListings(ctx context.Context, ids ...types.ListingId) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.removeUnsafe(id)
	}
	s.updateGauges()
	return nil
}

// HandleChange applies a change event, deletions last.
func (s *MemoryStore) HandleChange(ctx context.Context, change types.ListingChange) error {
	if len(change.Upserted) > 0 {
		if err := s.UpsertListings(ctx, change.Upserted...); err != nil {
			return err
		}
	}
	return s.DeleteListings(ctx, change.Deleted...)
}

func (s *MemoryStore) Get(id types.ListingId) (types.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return types.Listing{}, false
	}
	return *l, true
}

// All yields a copy of every listing ordered by id.
func (s *MemoryStore) All() iter.Seq[types.Listing] {
	s.mu.RLock()
	ids := slices.Sorted(maps.Keys(s.listings))
	items := make([]types.Listing, len(ids))
	for i, id := range ids {
		items[i] = *s.listings[id]
	}
	s.mu.RUnlock()
	return slices.Values(items)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

func (s *MemoryStore) unionUnsafe(d types.Dimension, values []string) *roaring.Bitmap {
	ret := roaring.New()
	for _, v := range values {
		if ids, ok := s.fields[d][v]; ok {
			ret.Or(ids)
		}
	}
	return ret
}

func roomKeys(rooms []int) []string {
	ret := make([]string, len(rooms))
	for i, r := range rooms {
		ret[i] = fmt.Sprint(r)
	}
	return ret
}

// matchUnsafe returns a new bitmap the caller may modify.
func (s *MemoryStore) matchUnsafe(f *types.ListingFilter) *roaring.Bitmap {
	acc := s.active.Clone()
	if len(f.Categories) > 0 {
		acc.And(s.unionUnsafe(types.DimensionCategory, f.Categories))
	}
	if len(f.Districts) > 0 {
		acc.And(s.unionUnsafe(types.DimensionDistrict, f.Districts))
	}
	if len(f.Conditions) > 0 {
		acc.And(s.unionUnsafe(types.DimensionCondition, f.Conditions))
	}
	if len(f.Rooms) > 0 {
		acc.And(s.unionUnsafe(types.DimensionRooms, roomKeys(f.Rooms)))
	}
	if f.DealType != "" {
		acc.And(s.unionUnsafe(types.DimensionDealType, []string{string(f.DealType)}))
	}
	if acc.IsEmpty() {
		return acc
	}
	if f.Query != "" {
		if ids := s.search.Match(f.Query); ids != nil {
			acc.And(ids.Bitmap())
		}
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		outside := roaring.New()
		it := acc.Iterator()
		for it.HasNext() {
			id := it.Next()
			price := s.listings[id].Price
			if (f.PriceMin != nil && price < *f.PriceMin) || (f.PriceMax != nil && price > *f.PriceMax) {
				outside.Add(id)
			}
		}
		acc.AndNot(outside)
	}
	return acc
}

func (s *MemoryStore) Count(ctx context.Context, filter types.ListingFilter) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.FromBitmap(s.matchUnsafe(&filter)).Len(), nil
}

func (s *MemoryStore) GroupCount(ctx context.Context, field types.Dimension, filter types.ListingFilter) (map[string]int, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.fields[field]
	if !ok {
		return nil, fmt.Errorf("field %s cannot be grouped", field)
	}
	matching := types.FromBitmap(s.matchUnsafe(&filter))
	ret := make(map[string]int, len(values))
	if matching.Len() == 0 {
		return ret, nil
	}
	for value, ids := range values {
		if count := matching.IntersectionLen(types.FromBitmap(ids)); count > 0 {
			ret[value] = count
		}
	}
	return ret, nil
}

func (s *MemoryStore) PriceExtent(ctx context.Context, filter types.ListingFilter) (PriceExtent, error) {
	if err := s.check(ctx); err != nil {
		return PriceExtent{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := PriceExtent{}
	it := s.matchUnsafe(&filter).Iterator()
	for it.HasNext() {
		price := s.listings[it.Next()].Price
		if ret.Count == 0 || price < ret.Min {
			ret.Min = price
		}
		if ret.Count == 0 || price > ret.Max {
			ret.Max = price
		}
		ret.Count++
	}
	return ret, nil
}
