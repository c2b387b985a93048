package types

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gorilla/schema"
)

// FacetQuery is the raw query string of the facet endpoint. Numbers are kept
// as strings so malformed values can be dropped instead of failing the decode.
type FacetQuery struct {
	Categories       []string `schema:"category"`
	Districts        []string `schema:"district"`
	Conditions       []string `schema:"condition"`
	Rooms            []string `schema:"rooms"`
	MinPrice         string   `schema:"minPrice"`
	MaxPrice         string   `schema:"maxPrice"`
	Deal             string   `schema:"deal"`
	Query            string   `schema:"q"`
	CategoryQuery    string   `schema:"categoryQuery"`
	Scope            string   `schema:"scope"`
	ApplyPriceFilter string   `schema:"applyPriceFilter"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// ParsePrice reads user or query text into a price. Spaces, commas and
// underscores are accepted as thousand separators.
func ParsePrice(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', '_', '\u00a0':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (q *FacetQuery) Selection() FilterSelection {
	sel := NewSelection()
	sel.Categories = q.Categories
	sel.Districts = q.Districts
	sel.Conditions = q.Conditions
	for _, r := range q.Rooms {
		if n, ok := ParseRooms(r); ok {
			sel.Rooms = append(sel.Rooms, n)
		}
	}
	if dt, ok := ParseDealType(q.Deal); ok {
		sel.DealType = dt
	}
	if v, ok := ParsePrice(q.MinPrice); ok {
		sel.PriceMin = UserBound(v)
	}
	if v, ok := ParsePrice(q.MaxPrice); ok {
		sel.PriceMax = UserBound(v)
	}
	sel.ApplyPriceFilter = true
	if q.ApplyPriceFilter != "" {
		if b, err := strconv.ParseBool(q.ApplyPriceFilter); err == nil {
			sel.ApplyPriceFilter = b
		}
	}
	sel.ScopeCategory = q.Scope
	sel.SearchText = q.CategoryQuery
	if strings.TrimSpace(q.Query) != "" {
		// global search leaves the category page scope
		sel.SearchText = q.Query
		sel.ScopeCategory = ""
	}
	sel.Normalize()
	return sel
}

func SelectionFromValues(query url.Values) (FilterSelection, error) {
	q := FacetQuery{}
	if err := decoder.Decode(&q, query); err != nil {
		return NewSelection(), err
	}
	return q.Selection(), nil
}

func GetSelectionFromRequest(r *http.Request) (FilterSelection, error) {
	if r.Method == http.MethodGet {
		return SelectionFromValues(r.URL.Query())
	}
	sel := NewSelection()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&sel)
	sel.Normalize()
	return sel, err
}

// QueryValues encodes the selection as facet endpoint parameters. The result
// sorted by Encode is also the canonical cache key of the selection.
func (s *FilterSelection) QueryValues() url.Values {
	v := url.Values{}
	for _, c := range s.Categories {
		v.Add("category", c)
	}
	for _, d := range s.Districts {
		v.Add("district", d)
	}
	for _, c := range s.Conditions {
		v.Add("condition", c)
	}
	for _, r := range s.Rooms {
		v.Add("rooms", strconv.Itoa(r))
	}
	if s.DealType.Valid() && s.DealType != DefaultDealType {
		v.Set("deal", s.DealType.Param())
	}
	if s.PriceMin.Enforced() {
		v.Set("minPrice", FormatPrice(s.PriceMin.Value))
	}
	if s.PriceMax.Enforced() {
		v.Set("maxPrice", FormatPrice(s.PriceMax.Value))
	}
	if !s.ApplyPriceFilter && (s.PriceMin.Enforced() || s.PriceMax.Enforced()) {
		v.Set("applyPriceFilter", "false")
	}
	if s.ScopeCategory != "" {
		v.Set("scope", s.ScopeCategory)
		if s.SearchText != "" {
			v.Set("categoryQuery", s.SearchText)
		}
	} else if s.SearchText != "" {
		v.Set("q", s.SearchText)
	}
	return v
}

func (s *FilterSelection) CacheKey() string {
	return s.QueryValues().Encode()
}
