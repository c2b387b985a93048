package types

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

type ListingId = uint32

const StatusActive = "active"

type Listing struct {
	Id          ListingId `json:"id"`
	Category    string    `json:"category"`
	District    string    `json:"district"`
	Condition   string    `json:"condition,omitempty"`
	Rooms       int       `json:"rooms"`
	DealType    DealType  `json:"dealType"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

func (l *Listing) IsActive() bool {
	return strings.EqualFold(l.Status, StatusActive)
}

// FieldValue returns the key a listing is grouped under for a dimension.
func (l *Listing) FieldValue(d Dimension) (string, bool) {
	switch d {
	case DimensionCategory:
		return l.Category, l.Category != ""
	case DimensionDistrict:
		return l.District, l.District != ""
	case DimensionCondition:
		return l.Condition, l.Condition != ""
	case DimensionRooms:
		return strconv.Itoa(l.Rooms), l.Rooms > 0
	case DimensionDealType:
		return string(l.DealType), l.DealType.Valid()
	}
	return "", false
}

// ToStringList is the text indexed for free text search.
func (l *Listing) ToStringList() []string {
	return []string{l.Title, l.Address, l.District, l.Description}
}

type ListingChange struct {
	Upserted []Listing  `json:"upserted,omitempty"`
	Deleted  []ListingId `json:"deleted,omitempty"`
}

func (c *ListingChange) IsEmpty() bool {
	return len(c.Upserted) == 0 && len(c.Deleted) == 0
}

// MergeChanges folds changes in order into one. A later delete drops an
// earlier upsert of the same id and a later upsert cancels an earlier delete.
func MergeChanges(changes ...ListingChange) ListingChange {
	upserted := make(map[ListingId]int)
	deleted := make(map[ListingId]struct{})
	ret := ListingChange{}
	for _, c := range changes {
		for _, l := range c.Upserted {
			delete(deleted, l.Id)
			if idx, ok := upserted[l.Id]; ok {
				ret.Upserted[idx] = l
				continue
			}
			upserted[l.Id] = len(ret.Upserted)
			ret.Upserted = append(ret.Upserted, l)
		}
		for _, id := range c.Deleted {
			if idx, ok := upserted[id]; ok {
				ret.Upserted = slices.Delete(ret.Upserted, idx, idx+1)
				delete(upserted, id)
				for i := idx; i < len(ret.Upserted); i++ {
					upserted[ret.Upserted[i].Id] = i
				}
			}
			deleted[id] = struct{}{}
		}
	}
	for _, c := range changes {
		for _, id := range c.Deleted {
			if _, ok := deleted[id]; ok {
				ret.Deleted = append(ret.Deleted, id)
				delete(deleted, id)
			}
		}
	}
	return ret
}
