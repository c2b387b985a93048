package store

import (
	"context"
	"errors"
	"testing"

	"github.com/matst80/slask-listings/pkg/types"
)

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	err := s.UpsertListings(context.Background(),
		types.Listing{Id: 1, Category: "apartments", District: "A", Condition: "new", Rooms: 2, DealType: types.DealSale, Price: 1_000_000, Status: "active", Title: "Bright apartment with balcony"},
		types.Listing{Id: 2, Category: "apartments", District: "B", Condition: "renovated", Rooms: 3, DealType: types.DealSale, Price: 2_500_000, Status: "active"},
		types.Listing{Id: 3, Category: "houses", District: "A", Condition: "new", Rooms: 5, DealType: types.DealRent, Price: 20_000, Status: "active", Title: "House with garden"},
		types.Listing{Id: 4, Category: "houses", District: "C", Rooms: 4, DealType: types.DealSale, Price: 4_000_000, Status: "archived"},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return s
}

func TestCountOnlyActive(t *testing.T) {
	s := seedStore(t)
	count, err := s.Count(context.Background(), types.ListingFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Expected 3 active listings, got %d", count)
	}
	if s.Len() != 4 {
		t.Errorf("Expected 4 stored listings, got %d", s.Len())
	}
}

func TestGroupCount(t *testing.T) {
	s := seedStore(t)
	groups, err := s.GroupCount(context.Background(), types.DimensionDistrict, types.ListingFilter{DealType: types.DealSale})
	if err != nil {
		t.Fatal(err)
	}
	if groups["A"] != 1 || groups["B"] != 1 {
		t.Errorf("Expected A:1 B:1, got %v", groups)
	}
	if _, ok := groups["C"]; ok {
		t.Errorf("Expected inactive district to be missing, got %v", groups)
	}
	if _, err := s.GroupCount(context.Background(), types.DimensionPrice, types.ListingFilter{}); err == nil {
		t.Errorf("Expected price to be rejected as group field")
	}
}

func TestPriceFilterAndExtent(t *testing.T) {
	s := seedStore(t)
	min := 500_000.0
	f := types.ListingFilter{PriceMin: &min}
	count, _ := s.Count(context.Background(), f)
	if count != 2 {
		t.Errorf("Expected 2 listings above min, got %d", count)
	}
	extent, err := s.PriceExtent(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if extent.Min != 1_000_000 || extent.Max != 2_500_000 || extent.Count != 2 {
		t.Errorf("Unexpected extent %+v", extent)
	}
	empty, _ := s.PriceExtent(context.Background(), types.ListingFilter{Districts: []string{"Z"}})
	if empty.Count != 0 {
		t.Errorf("Expected empty extent, got %+v", empty)
	}
}

func TestFreeTextFilter(t *testing.T) {
	s := seedStore(t)
	count, _ := s.Count(context.Background(), types.ListingFilter{Query: "garden"})
	if count != 1 {
		t.Errorf("Expected 1 match for garden, got %d", count)
	}
	count, _ = s.Count(context.Background(), types.ListingFilter{Query: "garden", DealType: types.DealSale})
	if count != 0 {
		t.Errorf("Expected free text to combine with deal type, got %d", count)
	}
}

func TestUpsertMovesIndexes(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()
	l, _ := s.Get(1)
	l.District = "C"
	if err := s.UpsertListings(ctx, l); err != nil {
		t.Fatal(err)
	}
	groups, _ := s.GroupCount(ctx, types.DimensionDistrict, types.ListingFilter{})
	if groups["A"] != 1 || groups["C"] != 1 {
		t.Errorf("Expected listing to move district, got %v", groups)
	}
	err := s.HandleChange(ctx, types.ListingChange{Deleted: []types.ListingId{1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	count, _ := s.Count(ctx, types.ListingFilter{})
	if count != 1 {
		t.Errorf("Expected 1 listing after delete, got %d", count)
	}
	if s.UpsertListings(ctx, types.Listing{Id: 9, DealType: "LEASE"}) == nil {
		t.Errorf("Expected invalid deal type to be rejected")
	}
}

func TestCancelledContext(t *testing.T) {
	s := seedStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Count(ctx, types.ListingFilter{}); err == nil {
		t.Errorf("Expected cancelled context to fail")
	}
}

func TestClosedStore(t *testing.T) {
	s := seedStore(t)
	s.Close()
	if _, err := s.GroupCount(context.Background(), types.DimensionRooms, types.ListingFilter{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
