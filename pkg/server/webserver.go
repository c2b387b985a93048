package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-listings/pkg/common"
	"github.com/matst80/slask-listings/pkg/facet"
	"github.com/matst80/slask-listings/pkg/store"
	"github.com/matst80/slask-listings/pkg/tracking"
	"github.com/matst80/slask-listings/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	facetRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklistings_facets_total",
		Help: "The total number of processed facet requests",
	})
	countRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklistings_counts_total",
		Help: "The total number of processed count requests",
	})
	listingWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slasklistings_listing_writes_total",
		Help: "The total number of listings written through the admin api",
	}, []string{"op"})
)

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ChangeSink receives applied changes, the queue in front of the publisher.
type ChangeSink interface {
	Add(changes ...types.ListingChange)
}

type WebServer struct {
	Facets facet.SnapshotProvider
	Store  store.ListingStore
	Writer store.ListingWriter
	// optional
	Cache     Invalidator
	Changes   ChangeSink
	Tracking  tracking.Tracking
	Auth      *AdminAuth
	OnChanged func()
}

type CountResponse struct {
	TotalCount             int  `json:"totalCount"`
	HasAnyNonDefaultFilter bool `json:"hasAnyNonDefaultFilter"`
}

func (ws *WebServer) GetFacets(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	s := time.Now()
	go facetRequests.Inc()
	sel, err := types.GetSelectionFromRequest(r)
	if err != nil {
		return common.BadRequest(err)
	}
	snapshot, err := ws.Facets.ComputeFacets(r.Context(), sel)
	if err != nil {
		return fmt.Errorf("compute facets: %w", err)
	}
	if ws.Tracking != nil {
		go ws.Tracking.TrackFacetQuery(tracking.NewRequestInfo(r), &sel, snapshot)
	}
	w.Header().Set("Cache-Control", "private, stale-while-revalidate=60")
	w.Header().Set("x-duration", fmt.Sprintf("%v", time.Since(s)))
	w.WriteHeader(http.StatusOK)
	return enc.Encode(snapshot)
}

func (ws *WebServer) GetCount(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	go countRequests.Inc()
	sel, err := types.GetSelectionFromRequest(r)
	if err != nil {
		return common.BadRequest(err)
	}
	count, err := ws.Store.Count(r.Context(), sel.Filter())
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	w.WriteHeader(http.StatusOK)
	return enc.Encode(CountResponse{
		TotalCount:             count,
		HasAnyNonDefaultFilter: sel.HasAnyNonDefaultFilter(),
	})
}

func (ws *WebServer) UpsertListings(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	listings := make([]types.Listing, 0)
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&listings); err != nil {
		return common.BadRequest(err)
	}
	for i := range listings {
		if listings[i].Id == 0 {
			return common.BadRequest(errors.New("listing id is required"))
		}
	}
	if err := ws.Writer.UpsertListings(r.Context(), listings...); err != nil {
		return common.BadRequest(err)
	}
	listingWrites.WithLabelValues("upsert").Add(float64(len(listings)))
	ws.applied(r.Context(), types.ListingChange{Upserted: listings})
	w.WriteHeader(http.StatusOK)
	return enc.Encode(map[string]int{"upserted": len(listings)})
}

func (ws *WebServer) DeleteListing(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return common.BadRequest(err)
	}
	if err := ws.Writer.DeleteListings(r.Context(), types.ListingId(id)); err != nil {
		return err
	}
	listingWrites.WithLabelValues("delete").Inc()
	ws.applied(r.Context(), types.ListingChange{Deleted: []types.ListingId{types.ListingId(id)}})
	w.WriteHeader(http.StatusOK)
	return enc.Encode(map[string]types.ListingId{"deleted": types.ListingId(id)})
}

// applied runs after a change reached the store. Cache invalidation happens
// before the response so the writer reads its own write.
func (ws *WebServer) applied(ctx context.Context, change types.ListingChange) {
	if ws.Cache != nil {
		if err := ws.Cache.Invalidate(ctx); err != nil {
			log.Printf("Failed to invalidate facet cache: %v", err)
		}
	}
	if ws.Changes != nil {
		ws.Changes.Add(change)
	}
	if ws.OnChanged != nil {
		ws.OnChanged()
	}
}

func (ws *WebServer) Handle() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/facets", common.JsonHandler(ws.GetFacets))
	mux.HandleFunc("/api/count", common.JsonHandler(ws.GetCount))
	mux.HandleFunc("PUT /admin/listings", ws.Auth.Middleware(common.JsonHandler(ws.UpsertListings)))
	mux.HandleFunc("DELETE /admin/listings/{id}", ws.Auth.Middleware(common.JsonHandler(ws.DeleteListing)))
	mux.HandleFunc("OPTIONS /admin/", common.RespondToOptions)
	return mux
}
