package types

import (
	"slices"
	"testing"
)

func TestMergeChanges(t *testing.T) {
	merged := MergeChanges(
		ListingChange{Upserted: []Listing{{Id: 1, Price: 1}, {Id: 2}}},
		ListingChange{Deleted: []ListingId{2, 3}},
		ListingChange{Upserted: []Listing{{Id: 1, Price: 2}, {Id: 3}}},
	)
	if len(merged.Upserted) != 2 || merged.Upserted[0].Price != 2 || merged.Upserted[1].Id != 3 {
		t.Errorf("Unexpected upserts %+v", merged.Upserted)
	}
	if !slices.Equal(merged.Deleted, []ListingId{2}) {
		t.Errorf("Expected only 2 deleted, got %v", merged.Deleted)
	}
}

func TestListingFieldValue(t *testing.T) {
	l := Listing{Rooms: 0, DealType: DealRent, Status: "Active"}
	if _, ok := l.FieldValue(DimensionRooms); ok {
		t.Errorf("Expected zero rooms to be ungrouped")
	}
	if v, ok := l.FieldValue(DimensionDealType); !ok || v != "RENT" {
		t.Errorf("Expected RENT, got %q", v)
	}
	if !l.IsActive() {
		t.Errorf("Expected status match to ignore case")
	}
}
