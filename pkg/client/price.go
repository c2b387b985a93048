package client

import (
	"math"
	"strconv"
	"strings"

	"github.com/matst80/slask-listings/pkg/types"
)

// PriceStep is the slider granularity in currency units.
const PriceStep = 10_000

type PriceSide int

const (
	PriceMin PriceSide = iota
	PriceMax
)

func (s PriceSide) String() string {
	if s == PriceMax {
		return "max"
	}
	return "min"
}

// SnapPrice rounds a dragged value to step. Values at or beyond the bounds
// pass through as the bound itself so the true extremes stay reachable.
func SnapPrice(value, lo, hi, step float64) float64 {
	if value <= lo {
		return lo
	}
	if value >= hi {
		return hi
	}
	if step <= 0 {
		return value
	}
	return min(max(math.Round(value/step)*step, lo), hi)
}

// FormatPriceInput renders a price the way it is typed, with spaces as
// thousand separators.
func FormatPriceInput(value float64) string {
	raw := strconv.FormatFloat(math.Round(value), 'f', 0, 64)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func reachableBounds(snapshot *types.FacetSnapshot) (float64, float64) {
	if snapshot == nil {
		return types.FallbackPriceMin, types.FallbackPriceMax
	}
	return types.ClampRange(snapshot.PriceRange.Min, snapshot.PriceRange.Max)
}
