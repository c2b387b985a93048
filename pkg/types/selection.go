package types

import (
	"slices"
	"strconv"
	"strings"
)

// PriceBound is one side of the price selection. UserEdited separates a value
// the user typed or dragged from one filled in from reported bounds.
type PriceBound struct {
	Value      float64 `json:"value"`
	Set        bool    `json:"set"`
	UserEdited bool    `json:"userEdited"`
}

func UserBound(value float64) PriceBound {
	return PriceBound{Value: value, Set: true, UserEdited: true}
}

func AutoBound(value float64) PriceBound {
	return PriceBound{Value: value, Set: true}
}

// Enforced reports whether the bound takes part in filtering.
func (b PriceBound) Enforced() bool {
	return b.Set && b.UserEdited
}

func (b PriceBound) ptr() *float64 {
	v := b.Value
	return &v
}

type FilterSelection struct {
	Categories       []string   `json:"categories"`
	Districts        []string   `json:"districts"`
	Conditions       []string   `json:"conditions"`
	Rooms            []int      `json:"rooms"`
	DealType         DealType   `json:"dealType"`
	PriceMin         PriceBound `json:"priceMin"`
	PriceMax         PriceBound `json:"priceMax"`
	SearchText       string     `json:"searchText,omitempty"`
	ScopeCategory    string     `json:"scopeCategory,omitempty"`
	ApplyPriceFilter bool       `json:"applyPriceFilter"`
}

func NewSelection() FilterSelection {
	return FilterSelection{
		Categories: []string{},
		Districts:  []string{},
		Conditions: []string{},
		Rooms:      []int{},
		DealType:   DefaultDealType,

		ApplyPriceFilter: true,
	}
}

func (s FilterSelection) Clone() FilterSelection {
	s.Categories = slices.Clone(s.Categories)
	s.Districts = slices.Clone(s.Districts)
	s.Conditions = slices.Clone(s.Conditions)
	s.Rooms = slices.Clone(s.Rooms)
	return s
}

func normalizeStrings(values []string) []string {
	ret := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			ret = append(ret, v)
		}
	}
	slices.Sort(ret)
	return slices.Compact(ret)
}

// Normalize sorts and dedupes the sets, defaults the deal type and clamps an
// inverted price range to a single point.
func (s *FilterSelection) Normalize() {
	s.Categories = normalizeStrings(s.Categories)
	s.Districts = normalizeStrings(s.Districts)
	s.Conditions = normalizeStrings(s.Conditions)
	rooms := slices.DeleteFunc(slices.Clone(s.Rooms), func(r int) bool { return r <= 0 })
	slices.Sort(rooms)
	s.Rooms = slices.Compact(rooms)
	if !s.DealType.Valid() {
		s.DealType = DefaultDealType
	}
	s.SearchText = strings.TrimSpace(s.SearchText)
	s.ScopeCategory = strings.TrimSpace(s.ScopeCategory)
	if s.PriceMin.Set && s.PriceMin.Value < 0 {
		s.PriceMin.Value = 0
	}
	if s.PriceMin.Set && s.PriceMax.Set && s.PriceMin.Value > s.PriceMax.Value {
		s.PriceMax.Value = s.PriceMin.Value
	}
}

func toggle[T comparable](values []T, value T) []T {
	if idx := slices.Index(values, value); idx >= 0 {
		return slices.Delete(slices.Clone(values), idx, idx+1)
	}
	return append(slices.Clone(values), value)
}

// Toggle flips membership of value in a set valued dimension. For deal type
// the value replaces the current one. Values that do not parse are ignored.
func (s *FilterSelection) Toggle(d Dimension, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	switch d {
	case DimensionCategory:
		s.Categories = toggle(s.Categories, value)
	case DimensionDistrict:
		s.Districts = toggle(s.Districts, value)
	case DimensionCondition:
		s.Conditions = toggle(s.Conditions, value)
	case DimensionRooms:
		n, ok := ParseRooms(value)
		if !ok {
			return false
		}
		s.Rooms = toggle(s.Rooms, n)
	case DimensionDealType:
		dt, ok := ParseDealType(value)
		if !ok || dt == s.DealType {
			return false
		}
		s.DealType = dt
	default:
		return false
	}
	s.Normalize()
	return true
}

func (s *FilterSelection) Selected(d Dimension) []string {
	switch d {
	case DimensionCategory:
		if s.ScopeCategory != "" {
			return []string{s.ScopeCategory}
		}
		return s.Categories
	case DimensionDistrict:
		return s.Districts
	case DimensionCondition:
		return s.Conditions
	case DimensionRooms:
		ret := make([]string, len(s.Rooms))
		for i, r := range s.Rooms {
			ret[i] = strconv.Itoa(r)
		}
		return ret
	case DimensionDealType:
		return []string{string(s.DealType)}
	}
	return nil
}

func (s *FilterSelection) priceEnforced() bool {
	return s.ApplyPriceFilter && (s.PriceMin.Enforced() || s.PriceMax.Enforced())
}

// HasAnyNonDefaultFilter reports whether any dimension differs from its
// default. Free text and page scope are context, not filters.
func (s *FilterSelection) HasAnyNonDefaultFilter() bool {
	if len(s.Categories) > 0 && s.ScopeCategory == "" {
		return true
	}
	if len(s.Districts) > 0 || len(s.Conditions) > 0 || len(s.Rooms) > 0 {
		return true
	}
	if s.DealType.Valid() && s.DealType != DefaultDealType {
		return true
	}
	return s.priceEnforced()
}

// Filter builds the store filter for the full selection.
func (s *FilterSelection) Filter() ListingFilter {
	f := ListingFilter{
		Categories: s.Categories,
		Districts:  s.Districts,
		Conditions: s.Conditions,
		Rooms:      s.Rooms,
		DealType:   s.DealType,
		Query:      s.SearchText,
	}
	if !f.DealType.Valid() {
		f.DealType = DefaultDealType
	}
	if s.ScopeCategory != "" {
		f.Categories = []string{s.ScopeCategory}
	}
	if s.ApplyPriceFilter {
		if s.PriceMin.Enforced() {
			f.PriceMin = s.PriceMin.ptr()
		}
		if s.PriceMax.Enforced() {
			f.PriceMax = s.PriceMax.ptr()
		}
	}
	return f
}

// FilterWithout is the dimension-excluded filter used to compute the options
// of d. The page scope is kept even when the category dimension is excluded.
func (s *FilterSelection) FilterWithout(d Dimension) ListingFilter {
	f := s.Filter()
	if d == DimensionCategory && s.ScopeCategory != "" {
		return f
	}
	return f.WithOut(d)
}
