// Package router keeps the browse session's navigation history.
package router

import (
	"net/url"
	"strings"
)

// Intent says which way a navigation went.
type Intent int

const (
	Forward Intent = iota // Push to a new path.
	Back                  // Pop back to the previous path.
)

func (i Intent) String() string {
	if i == Back {
		return "back"
	}
	return "forward"
}

// Navigation describes a completed route change.
type Navigation struct {
	Path        string
	Intent      Intent
	ResetScroll bool // Views should scroll to the top on arrival.
}

// PushOption configures a Push.
type PushOption func(*Navigation)

// WithoutScrollReset keeps the destination's scroll offset.
func WithoutScrollReset() PushOption {
	return func(n *Navigation) { n.ResetScroll = false }
}

// Router is a history stack of paths.
// It is not safe for concurrent use; confine it to the Bubble Tea update loop.
type Router struct {
	history []string
}

// New creates a Router positioned at start.
func New(start string) *Router {
	return &Router{history: []string{normalize(start)}}
}

// Path returns the current path including its query string.
func (r *Router) Path() string {
	return r.history[len(r.history)-1]
}

// Depth returns the number of entries in the history.
func (r *Router) Depth() int { return len(r.history) }

// Push navigates forward to path.
func (r *Router) Push(path string, opts ...PushOption) Navigation {
	nav := Navigation{Path: normalize(path), Intent: Forward, ResetScroll: true}
	for _, opt := range opts {
		opt(&nav)
	}
	r.history = append(r.history, nav.Path)
	return nav
}

// Back pops the current path. It reports false, leaving the router
// unchanged, when there is nothing to go back to.
func (r *Router) Back() (Navigation, bool) {
	if len(r.history) < 2 {
		return Navigation{}, false
	}
	r.history = r.history[:len(r.history)-1]
	return Navigation{Path: r.Path(), Intent: Back}, true
}

// Query returns the parsed query string of path.
func Query(path string) url.Values {
	i := strings.IndexByte(path, '?')
	if i < 0 {
		return url.Values{}
	}
	q, err := url.ParseQuery(path[i+1:])
	if err != nil {
		return url.Values{}
	}
	return q
}

// WithQuery returns route with q encoded as its query string.
func WithQuery(route string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return route + "?" + enc
	}
	return route
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
