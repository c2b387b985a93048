package client

import (
	"net/url"
	"sync"

	"github.com/matst80/slask-listings/pkg/types"
)

// CommitSink receives the selection on Apply and Reset.
type CommitSink interface {
	Commit(sel types.FilterSelection) error
}

type NavigateOptions struct {
	Scroll bool
}

type Navigator interface {
	Current() *url.URL
	Push(u *url.URL, opts NavigateOptions) error
}

// URLSink writes the selection into the page URL.
type URLSink struct {
	Navigator Navigator
}

func (s *URLSink) Commit(sel types.FilterSelection) error {
	return s.Navigator.Push(EncodeURL(s.Navigator.Current(), sel), NavigateOptions{Scroll: false})
}

// CallbackSink hands the selection to the owner of a controlled filter.
type CallbackSink func(sel types.FilterSelection)

func (f CallbackSink) Commit(sel types.FilterSelection) error {
	f(sel.Clone())
	return nil
}

// HistoryNavigator keeps the navigation history in memory.
type HistoryNavigator struct {
	mu      sync.Mutex
	history []*url.URL
}

func NewHistoryNavigator(start *url.URL) *HistoryNavigator {
	if start == nil {
		start = &url.URL{Path: "/"}
	}
	return &HistoryNavigator{history: []*url.URL{start}}
}

func (n *HistoryNavigator) Current() *url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	u := *n.history[len(n.history)-1]
	return &u
}

func (n *HistoryNavigator) Push(u *url.URL, _ NavigateOptions) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = append(n.history, u)
	return nil
}

func (n *HistoryNavigator) History() []*url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*url.URL{}, n.history...)
}
