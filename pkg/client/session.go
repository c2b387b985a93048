package client

import (
	"strings"

	"github.com/matst80/slask-listings/pkg/types"
)

// Session is the client side filter state. It is not safe for concurrent
// use; the Controller owns it from its event loop.
type Session struct {
	// Selection is updated at once on every edit.
	Selection types.FilterSelection
	// Confirmed is the latest accepted snapshot, replaced wholesale.
	Confirmed   *types.FacetSnapshot
	Loading     bool
	Initialized bool
	latest      RequestToken
	// price inputs touched since the last Apply or Reset
	pricePending bool
}

func NewSession(initial types.FilterSelection) *Session {
	sel := initial.Clone()
	sel.Normalize()
	return &Session{Selection: sel}
}

func (s *Session) MintToken() RequestToken {
	s.latest++
	return s.latest
}

func (s *Session) LatestToken() RequestToken {
	return s.latest
}

// SetDimensionValue toggles value in a set valued dimension. Other facets
// are only narrowed by the next snapshot.
func (s *Session) SetDimensionValue(d types.Dimension, value string) bool {
	if d == types.DimensionDealType {
		dt, ok := types.ParseDealType(value)
		return ok && s.SetDealType(dt)
	}
	return s.Selection.Toggle(d, value)
}

func (s *Session) SetDealType(dt types.DealType) bool {
	if !dt.Valid() || s.Selection.DealType == dt {
		return false
	}
	s.Selection.DealType = dt
	return true
}

func (s *Session) SetSearchText(text string) bool {
	text = strings.TrimSpace(text)
	if s.Selection.SearchText == text {
		return false
	}
	s.Selection.SearchText = text
	return true
}

func (s *Session) bound(side PriceSide) *types.PriceBound {
	if side == PriceMax {
		return &s.Selection.PriceMax
	}
	return &s.Selection.PriceMin
}

// SetPrice handles typed input. Empty text clears the side, text that is not
// a price leaves the selection untouched. A parsed value is kept as typed.
func (s *Session) SetPrice(side PriceSide, raw string) bool {
	b := s.bound(side)
	if strings.TrimSpace(raw) == "" {
		if !b.Set {
			return false
		}
		*b = types.PriceBound{}
		s.pricePending = true
		return true
	}
	v, ok := types.ParsePrice(raw)
	if !ok {
		return false
	}
	next := types.UserBound(v)
	if *b == next {
		return false
	}
	*b = next
	s.pricePending = true
	return true
}

// SetPriceRange handles the slider. Values snap to PriceStep and a side left
// at its reachable bound is not counted as a user edit.
func (s *Session) SetPriceRange(minValue, maxValue float64) bool {
	lo, hi := reachableBounds(s.Confirmed)
	snappedMin := SnapPrice(minValue, lo, hi, PriceStep)
	snappedMax := SnapPrice(maxValue, lo, hi, PriceStep)
	snappedMin, snappedMax = types.ClampRange(snappedMin, snappedMax)

	nextMin := types.UserBound(snappedMin)
	if snappedMin == lo {
		nextMin = types.AutoBound(lo)
	}
	nextMax := types.UserBound(snappedMax)
	if snappedMax == hi {
		nextMax = types.AutoBound(hi)
	}
	if s.Selection.PriceMin == nextMin && s.Selection.PriceMax == nextMax {
		return false
	}
	s.Selection.PriceMin = nextMin
	s.Selection.PriceMax = nextMax
	s.pricePending = true
	return true
}

// ReceiveSnapshot accepts the snapshot only for the latest token. Price
// sides the user has not edited follow the reported reachable bounds.
func (s *Session) ReceiveSnapshot(snapshot *types.FacetSnapshot, token RequestToken) bool {
	if snapshot == nil || token != s.latest {
		return false
	}
	s.Confirmed = snapshot
	s.Loading = false
	s.Initialized = true
	lo, hi := reachableBounds(snapshot)
	if !s.Selection.PriceMin.UserEdited {
		s.Selection.PriceMin = types.AutoBound(lo)
	}
	if !s.Selection.PriceMax.UserEdited {
		s.Selection.PriceMax = types.AutoBound(hi)
	}
	return true
}

// Apply returns the selection to commit. When the price inputs were touched
// every set side becomes binding, even one left at the default.
func (s *Session) Apply() types.FilterSelection {
	if s.pricePending {
		for _, side := range []PriceSide{PriceMin, PriceMax} {
			if b := s.bound(side); b.Set {
				b.UserEdited = true
			}
		}
		s.pricePending = false
	}
	s.Selection.ApplyPriceFilter = true
	s.Selection.Normalize()
	return s.Selection.Clone()
}

// Reset returns every filter to its default. Search text and page scope are
// kept, edit provenance is cleared.
func (s *Session) Reset() bool {
	next := types.NewSelection()
	next.SearchText = s.Selection.SearchText
	next.ScopeCategory = s.Selection.ScopeCategory
	if s.Confirmed != nil {
		lo, hi := reachableBounds(s.Confirmed)
		next.PriceMin = types.AutoBound(lo)
		next.PriceMax = types.AutoBound(hi)
	}
	changed := s.Selection.CacheKey() != next.CacheKey()
	s.Selection = next
	s.pricePending = false
	return changed
}

func (s *Session) HasFiltersApplied() bool {
	return s.Selection.HasAnyNonDefaultFilter()
}
