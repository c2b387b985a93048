package types

// ListingFilter is the store level constraint set. Empty slices and nil
// bounds mean no constraint; an empty DealType matches every deal type.
type ListingFilter struct {
	Categories []string `json:"categories,omitempty"`
	Districts  []string `json:"districts,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Rooms      []int    `json:"rooms,omitempty"`
	DealType   DealType `json:"dealType,omitempty"`
	PriceMin   *float64 `json:"priceMin,omitempty"`
	PriceMax   *float64 `json:"priceMax,omitempty"`
	Query      string   `json:"query,omitempty"`
}

// WithOut returns a copy of the filter with the constraint for one dimension
// removed. Free text is never removed.
func (f ListingFilter) WithOut(d Dimension) ListingFilter {
	switch d {
	case DimensionCategory:
		f.Categories = nil
	case DimensionDistrict:
		f.Districts = nil
	case DimensionCondition:
		f.Conditions = nil
	case DimensionRooms:
		f.Rooms = nil
	case DimensionDealType:
		f.DealType = ""
	case DimensionPrice:
		f.PriceMin = nil
		f.PriceMax = nil
	}
	return f
}
