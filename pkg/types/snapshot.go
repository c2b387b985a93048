package types

const (
	FallbackPriceMin = float64(0)
	FallbackPriceMax = float64(100_000_000)
)

type FacetOption struct {
	Value     string `json:"value"`
	Count     int    `json:"count"`
	Available bool   `json:"available"`
}

type PriceRange struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	CurrentMin float64 `json:"currentMin"`
	CurrentMax float64 `json:"currentMax"`
}

// FacetSnapshot is built per request and never modified after it is returned.
type FacetSnapshot struct {
	Districts              []FacetOption `json:"districts"`
	Conditions             []FacetOption `json:"conditions"`
	Rooms                  []FacetOption `json:"rooms"`
	Categories             []FacetOption `json:"categories"`
	DealTypes              []FacetOption `json:"dealTypes"`
	PriceRange             PriceRange    `json:"priceRange"`
	TotalCount             int           `json:"totalCount"`
	HasAnyNonDefaultFilter bool          `json:"hasAnyNonDefaultFilter"`
}

func (s *FacetSnapshot) Options(d Dimension) []FacetOption {
	switch d {
	case DimensionCategory:
		return s.Categories
	case DimensionDistrict:
		return s.Districts
	case DimensionCondition:
		return s.Conditions
	case DimensionRooms:
		return s.Rooms
	case DimensionDealType:
		return s.DealTypes
	}
	return nil
}

func (s *FacetSnapshot) SetOptions(d Dimension, options []FacetOption) {
	switch d {
	case DimensionCategory:
		s.Categories = options
	case DimensionDistrict:
		s.Districts = options
	case DimensionCondition:
		s.Conditions = options
	case DimensionRooms:
		s.Rooms = options
	case DimensionDealType:
		s.DealTypes = options
	}
}

func (s *FacetSnapshot) Option(d Dimension, value string) (FacetOption, bool) {
	for _, o := range s.Options(d) {
		if o.Value == value {
			return o, true
		}
	}
	return FacetOption{}, false
}

// ClampRange turns an inverted range into a single point at min.
func ClampRange(min, max float64) (float64, float64) {
	if min > max {
		return min, min
	}
	return min, max
}

// NewPriceRange builds the slider range from reachable bounds and the bounds
// the selection echoes back.
func NewPriceRange(min, max float64, current *FilterSelection) PriceRange {
	min, max = ClampRange(min, max)
	r := PriceRange{Min: min, Max: max, CurrentMin: min, CurrentMax: max}
	if current == nil {
		return r
	}
	if current.PriceMin.Enforced() {
		r.CurrentMin = current.PriceMin.Value
	}
	if current.PriceMax.Enforced() {
		r.CurrentMax = current.PriceMax.Value
	}
	r.CurrentMin, r.CurrentMax = ClampRange(r.CurrentMin, r.CurrentMax)
	return r
}
