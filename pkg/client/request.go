package client

import (
	"context"

	"github.com/matst80/slask-listings/pkg/types"
)

// RequestToken is minted per outgoing facet request, strictly increasing
// within a session.
type RequestToken uint64

type RequestFunc func(ctx context.Context) (*types.FacetSnapshot, error)

type RequestResult func(token RequestToken, snapshot *types.FacetSnapshot, err error)

// CancellableRequest is one in-flight facet fetch with its own context.
type CancellableRequest struct {
	Token  RequestToken
	cancel context.CancelFunc
	done   chan struct{}
}

// StartRequest runs fn on a new goroutine and reports the outcome to
// onResult, also when the request was cancelled. Whether a result is still
// wanted is decided by the receiver from the token.
func StartRequest(parent context.Context, token RequestToken, fn RequestFunc, onResult RequestResult) *CancellableRequest {
	ctx, cancel := context.WithCancel(parent)
	r := &CancellableRequest{
		Token:  token,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		defer cancel()
		snapshot, err := fn(ctx)
		onResult(token, snapshot, err)
	}()
	return r
}

func (r *CancellableRequest) Cancel() {
	r.cancel()
}

func (r *CancellableRequest) Done() <-chan struct{} {
	return r.done
}
