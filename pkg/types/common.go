package types

import (
	"strconv"
	"strings"
)

type Dimension uint8

const (
	DimensionCategory Dimension = iota
	DimensionDistrict
	DimensionCondition
	DimensionRooms
	DimensionDealType
	DimensionPrice
)

// FacetDimensions are the dimensions reported as option lists in a snapshot.
var FacetDimensions = []Dimension{
	DimensionCategory,
	DimensionDistrict,
	DimensionCondition,
	DimensionRooms,
	DimensionDealType,
}

func (d Dimension) String() string {
	switch d {
	case DimensionCategory:
		return "category"
	case DimensionDistrict:
		return "district"
	case DimensionCondition:
		return "condition"
	case DimensionRooms:
		return "rooms"
	case DimensionDealType:
		return "deal"
	case DimensionPrice:
		return "price"
	}
	return "unknown"
}

func ParseDimension(s string) (Dimension, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "category", "categories":
		return DimensionCategory, true
	case "district", "districts":
		return DimensionDistrict, true
	case "condition", "conditions":
		return DimensionCondition, true
	case "rooms", "room":
		return DimensionRooms, true
	case "deal", "dealtype":
		return DimensionDealType, true
	case "price":
		return DimensionPrice, true
	}
	return 0, false
}

type DealType string

const (
	DealSale DealType = "SALE"
	DealRent DealType = "RENT"

	DefaultDealType = DealSale
)

var DealTypes = []DealType{DealSale, DealRent}

func ParseDealType(s string) (DealType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SALE":
		return DealSale, true
	case "RENT":
		return DealRent, true
	}
	return "", false
}

// Param is the lower case form used in query strings.
func (d DealType) Param() string {
	return strings.ToLower(string(d))
}

func (d DealType) Valid() bool {
	return d == DealSale || d == DealRent
}

// ParseRooms accepts a positive room count and rejects anything else.
func ParseRooms(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
