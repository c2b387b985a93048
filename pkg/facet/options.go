package facet

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/matst80/slask-listings/pkg/types"
)

func buildOptions(d types.Dimension, counts dimensionCounts, selected []string, allAvailable bool) []types.FacetOption {
	values := make(map[string]struct{}, len(counts.universe)+len(selected))
	for v := range counts.universe {
		values[v] = struct{}{}
	}
	for v := range counts.reachable {
		values[v] = struct{}{}
	}
	for _, v := range selected {
		values[v] = struct{}{}
	}
	if d == types.DimensionDealType {
		for _, dt := range types.DealTypes {
			values[string(dt)] = struct{}{}
		}
	}

	ret := make([]types.FacetOption, 0, len(values))
	for v := range values {
		count := counts.reachable[v]
		ret = append(ret, types.FacetOption{
			Value:     v,
			Count:     count,
			Available: allAvailable || count > 0,
		})
	}
	slices.SortFunc(ret, compareOptions(d))
	return ret
}

func compareOptions(d types.Dimension) func(a, b types.FacetOption) int {
	switch d {
	case types.DimensionRooms:
		return func(a, b types.FacetOption) int {
			an, _ := strconv.Atoi(a.Value)
			bn, _ := strconv.Atoi(b.Value)
			return cmp.Compare(an, bn)
		}
	case types.DimensionDealType:
		return func(a, b types.FacetOption) int {
			return cmp.Compare(dealOrder(a.Value), dealOrder(b.Value))
		}
	}
	return func(a, b types.FacetOption) int {
		return cmp.Compare(a.Value, b.Value)
	}
}

func dealOrder(value string) int {
	idx := slices.Index(types.DealTypes, types.DealType(value))
	if idx < 0 {
		return len(types.DealTypes)
	}
	return idx
}
