package messaging

import "github.com/matst80/slask-listings/pkg/types"

type ChangeTopic string

const (
	ListingsChanged ChangeTopic = "listing_changed"
)

// ListingEvent is the body published on ListingsChanged. Origin identifies
// the publishing instance so it can skip its own events.
type ListingEvent struct {
	Origin string              `json:"origin"`
	Change types.ListingChange `json:"change"`
}
