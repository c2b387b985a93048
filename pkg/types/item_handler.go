package types

import "context"

// ListingHandler receives listing changes from storage or messaging.
type ListingHandler interface {
	HandleChange(ctx context.Context, change ListingChange) error
}
