package types

import "iter"

// StorageProvider persists the listing set between restarts.
type StorageProvider interface {
	SaveListings(listings iter.Seq[Listing]) error
	LoadListings(handler ListingHandler) error
}
