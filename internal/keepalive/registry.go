// Package keepalive implements the view cache that keeps a route's view
// instance mounted across navigation instead of rebuilding it.
package keepalive

import (
	"log/slog"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
)

// Content is a mounted view subtree. The registry hands the same value
// back on every activation, so implementations hold their own state behind
// a pointer receiver and keep running while hidden. Content values are
// compared by identity and must be comparable.
type Content interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
}

// PathSource reports the router's current path, query string included.
type PathSource interface {
	Path() string
}

// Entry is a cached view: a logical name and its live content.
type Entry struct {
	Name    string
	Content Content
}

// Registry maps logical view names to their cached content and derives the
// active view from the current route.
// It is not safe for concurrent use; confine it to the Bubble Tea update loop.
type Registry struct {
	routes  RouteTable
	path    PathSource
	entries map[string]Entry
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty Registry over a static route table.
func New(routes RouteTable, path PathSource, opts ...Option) *Registry {
	if path == nil {
		panic("keepalive: New called with nil PathSource")
	}
	r := &Registry{
		routes:  routes,
		path:    path,
		entries: make(map[string]Entry),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register caches content under name if nothing is cached there yet.
// It reports whether the entry was inserted; a second registration for the
// same name is a no-op so a view never gets a second live instance.
// Panics if name is empty or content is nil (programmer error).
func (r *Registry) Register(name string, content Content) bool {
	if name == "" {
		panic("keepalive: Register called with empty name")
	}
	if content == nil {
		panic("keepalive: Register called with nil content")
	}
	if _, ok := r.entries[name]; ok {
		return false
	}
	r.entries[name] = Entry{Name: name, Content: content}
	r.logger.Debug("view cached", "view", name, "cached", len(r.entries))
	return true
}

// ActiveName returns the view name mapped to the current route, or false
// when the route has no keep-alive view.
func (r *Registry) ActiveName() (string, bool) {
	return r.routes.Lookup(r.path.Path())
}

// IsActive reports whether name is the view for the current route.
func (r *Registry) IsActive(name string) bool {
	active, ok := r.ActiveName()
	return ok && active == name
}

// Lookup returns the cached entry for name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Len returns the number of cached views.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns every cached entry sorted by name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
