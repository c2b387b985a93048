package client

import (
	"testing"

	"github.com/matst80/slask-listings/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotWithRange(total int, lo, hi float64) *types.FacetSnapshot {
	return &types.FacetSnapshot{
		TotalCount: total,
		PriceRange: types.PriceRange{Min: lo, Max: hi, CurrentMin: lo, CurrentMax: hi},
	}
}

func TestSessionUnparseablePrice(t *testing.T) {
	s := NewSession(types.NewSelection())
	before := s.Selection.CacheKey()
	assert.False(t, s.SetPrice(PriceMin, "abc"))
	assert.False(t, s.Selection.PriceMin.Set)
	assert.Equal(t, before, s.Selection.CacheKey())
}

func TestSessionPriceInputFormats(t *testing.T) {
	for _, raw := range []string{"1 200 000", "1,200,000", "1200000"} {
		s := NewSession(types.NewSelection())
		require.True(t, s.SetPrice(PriceMax, raw), raw)
		assert.Equal(t, types.UserBound(1_200_000), s.Selection.PriceMax, raw)
	}
	s := NewSession(types.NewSelection())
	s.SetPrice(PriceMin, "123 456")
	assert.Equal(t, 123_456.0, s.Selection.PriceMin.Value, "typed values are not snapped")
	assert.True(t, s.SetPrice(PriceMin, " "))
	assert.False(t, s.Selection.PriceMin.Set)
}

func TestSessionUserEditProtection(t *testing.T) {
	s := NewSession(types.NewSelection())
	require.True(t, s.SetPrice(PriceMin, "500000"))

	require.True(t, s.ReceiveSnapshot(snapshotWithRange(10, 0, 9_000_000), s.MintToken()))
	assert.Equal(t, 500_000.0, s.Selection.PriceMin.Value)
	assert.Equal(t, types.AutoBound(9_000_000), s.Selection.PriceMax)

	require.True(t, s.ReceiveSnapshot(snapshotWithRange(4, 100_000, 2_000_000), s.MintToken()))
	assert.Equal(t, 500_000.0, s.Selection.PriceMin.Value)
	assert.Equal(t, 2_000_000.0, s.Selection.PriceMax.Value, "auto filled side follows the snapshot")

	s.Reset()
	assert.False(t, s.Selection.PriceMin.UserEdited)
	require.True(t, s.ReceiveSnapshot(snapshotWithRange(4, 100_000, 2_000_000), s.MintToken()))
	assert.Equal(t, 100_000.0, s.Selection.PriceMin.Value)
}

func TestSessionTokenSupersession(t *testing.T) {
	s := NewSession(types.NewSelection())
	t1 := s.MintToken()
	t2 := s.MintToken()
	assert.True(t, s.ReceiveSnapshot(snapshotWithRange(2, 0, 10), t2))
	assert.False(t, s.ReceiveSnapshot(snapshotWithRange(1, 0, 10), t1))
	assert.Equal(t, 2, s.Confirmed.TotalCount)
}

func TestSessionSlider(t *testing.T) {
	s := NewSession(types.NewSelection())
	s.ReceiveSnapshot(snapshotWithRange(10, 3_333, 1_234_567), s.MintToken())

	require.True(t, s.SetPriceRange(3_333, 504_999))
	assert.Equal(t, types.AutoBound(3_333), s.Selection.PriceMin, "bound passes through unsnapped")
	assert.Equal(t, types.UserBound(500_000), s.Selection.PriceMax)

	require.True(t, s.SetPriceRange(26_000, 2_000_000))
	assert.Equal(t, types.UserBound(30_000), s.Selection.PriceMin)
	assert.Equal(t, types.AutoBound(1_234_567), s.Selection.PriceMax)
	assert.False(t, s.SetPriceRange(29_000, 1_300_000), "same snapped values are no change")
}

func TestSessionApplyForcesPendingPrice(t *testing.T) {
	s := NewSession(types.NewSelection())
	s.ReceiveSnapshot(snapshotWithRange(10, 0, 5_000_000), s.MintToken())
	sel := s.Apply()
	assert.False(t, sel.PriceMin.Enforced(), "untouched price stays out of the filter")

	s.SetPriceRange(0, 2_000_000)
	sel = s.Apply()
	assert.True(t, sel.PriceMin.Enforced(), "touched price is forced even at the default")
	assert.True(t, sel.PriceMax.Enforced())
	assert.True(t, sel.ApplyPriceFilter)
}

func TestSessionReset(t *testing.T) {
	sel := types.NewSelection()
	sel.SearchText = "garden"
	sel.ScopeCategory = "houses"
	sel.Toggle(types.DimensionDistrict, "A")
	sel.DealType = types.DealRent
	s := NewSession(sel)
	require.True(t, s.HasFiltersApplied())

	assert.True(t, s.Reset())
	assert.False(t, s.HasFiltersApplied())
	assert.Equal(t, "garden", s.Selection.SearchText)
	assert.Equal(t, "houses", s.Selection.ScopeCategory)
	assert.Equal(t, types.DealSale, s.Selection.DealType)
	assert.False(t, s.Reset())
}

func TestSessionDimensionToggle(t *testing.T) {
	s := NewSession(types.NewSelection())
	assert.True(t, s.SetDimensionValue(types.DimensionRooms, "3"))
	assert.False(t, s.SetDimensionValue(types.DimensionRooms, "many"))
	assert.True(t, s.SetDimensionValue(types.DimensionDealType, "rent"))
	assert.False(t, s.SetDimensionValue(types.DimensionDealType, "RENT"))
	assert.Equal(t, []int{3}, s.Selection.Rooms)
}
