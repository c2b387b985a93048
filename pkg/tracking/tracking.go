package tracking

import (
	"net/http"

	"github.com/matst80/slask-listings/pkg/types"
)

// RequestInfo is the part of a request kept for tracking. It is copied out
// before the handler returns, the request itself is not safe to use later.
type RequestInfo struct {
	Referer   string
	Ip        string
	UserAgent string
}

func NewRequestInfo(r *http.Request) RequestInfo {
	return RequestInfo{
		Referer:   r.Referer(),
		Ip:        clientIp(r),
		UserAgent: r.UserAgent(),
	}
}

type Tracking interface {
	TrackFacetQuery(info RequestInfo, sel *types.FilterSelection, snapshot *types.FacetSnapshot)
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}
