package client

import (
	"net/url"

	"github.com/matst80/slask-listings/pkg/types"
)

// PassThroughKeys are navigation parameters kept verbatim across filter
// changes.
var PassThroughKeys = []string{"returnUrl", "from"}

// ParseURL seeds a selection from a page URL. scope is the category of a
// category page, taken from the route rather than the query. Malformed
// values are dropped.
func ParseURL(u *url.URL, scope string) types.FilterSelection {
	values := url.Values{}
	if u != nil {
		values = u.Query()
	}
	if scope != "" {
		values.Set("scope", scope)
	}
	sel, err := types.SelectionFromValues(values)
	if err != nil {
		sel = types.NewSelection()
		sel.ScopeCategory = scope
	}
	return sel
}

// EncodeValues is the canonical filter query of a selection for page URLs.
func EncodeValues(sel types.FilterSelection) url.Values {
	values := sel.QueryValues()
	values.Del("scope")
	return values
}

// EncodeURL replaces the filter query of base with sel, keeping the path and
// the pass-through parameters.
func EncodeURL(base *url.URL, sel types.FilterSelection) *url.URL {
	u := url.URL{}
	if base != nil {
		u = *base
	}
	values := EncodeValues(sel)
	current := u.Query()
	for _, key := range PassThroughKeys {
		if v, ok := current[key]; ok {
			values[key] = v
		}
	}
	u.RawQuery = values.Encode()
	return &u
}
