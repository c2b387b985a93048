package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/matst80/slask-listings/pkg/common"
	"github.com/matst80/slask-listings/pkg/types"
)

func (a *app) GetListing(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return common.BadRequest(err)
	}
	listing, ok := a.store.Get(types.ListingId(id))
	if !ok {
		return common.NotFound(errors.New("listing not found"))
	}
	w.Header().Set("Cache-Control", "public, max-age=120")
	return enc.Encode(listing)
}

func (a *app) SaveTrigger(w http.ResponseWriter, r *http.Request, enc common.Encoder) error {
	a.gotSaveTrigger.Store(true)
	return enc.Encode(map[string]bool{"scheduled": true})
}
