package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/matst80/slask-listings/pkg/facet"
	"github.com/matst80/slask-listings/pkg/types"
)

type Fetcher interface {
	FetchFacets(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error)
}

type FetcherFunc func(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error)

func (f FetcherFunc) FetchFacets(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error) {
	return f(ctx, sel)
}

// EngineFetcher calls an engine in process.
type EngineFetcher struct {
	Provider facet.SnapshotProvider
}

func (f EngineFetcher) FetchFacets(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error) {
	return f.Provider.ComputeFacets(ctx, sel)
}

type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("facet request failed: %s", e.Status)
}

// HTTPFetcher calls the facet endpoint of a server.
type HTTPFetcher struct {
	BaseUrl string
	Client  *http.Client
}

func NewHTTPFetcher(baseUrl string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseUrl: strings.TrimRight(baseUrl, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *HTTPFetcher) get(ctx context.Context, path string, sel types.FilterSelection, out any) error {
	u := f.BaseUrl + path
	if q := sel.QueryValues().Encode(); q != "" {
		u += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	res, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{StatusCode: res.StatusCode, Status: res.Status}
	}
	return sonic.ConfigDefault.NewDecoder(res.Body).Decode(out)
}

func (f *HTTPFetcher) FetchFacets(ctx context.Context, sel types.FilterSelection) (*types.FacetSnapshot, error) {
	snapshot := &types.FacetSnapshot{}
	if err := f.get(ctx, "/api/facets", sel, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (f *HTTPFetcher) Count(ctx context.Context, sel types.FilterSelection) (int, error) {
	res := struct {
		TotalCount int `json:"totalCount"`
	}{}
	if err := f.get(ctx, "/api/count", sel, &res); err != nil {
		return 0, err
	}
	return res.TotalCount, nil
}
