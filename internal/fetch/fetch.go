// Package fetch is the data fetcher behind the browse views: a keyed query
// cache with a staleness window and per-key request dedupe.
package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a query: the view it feeds plus its encoded parameters.
type Key struct {
	View   string
	Params string
}

// String renders the key as "view?params".
func (k Key) String() string {
	if k.Params == "" {
		return k.View
	}
	return k.View + "?" + k.Params
}

// Func performs the underlying request for a key.
type Func func(ctx context.Context) (any, error)

// Result is the cached state of a query.
type Result struct {
	Data      any
	Err       error
	Loading   bool // No data yet; a load is needed.
	Stale     bool // Data is older than the stale window; a refetch is needed.
	FetchedAt time.Time
}

// IsError reports whether the last load failed.
func (r Result) IsError() bool { return r.Err != nil }

// NeedsLoad reports whether the caller should start a Load.
func (r Result) NeedsLoad() bool { return r.Loading || r.Stale }

type entry struct {
	data      any
	hasData   bool
	err       error
	fetchedAt time.Time
}

// Client caches query results by key. Safe for concurrent use: loads run
// inside tea.Cmd goroutines while views peek from the update loop.
type Client struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger used for load events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates an empty Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		entries: make(map[Key]*entry),
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Peek returns the cached state for key without loading. Data older than
// stale is returned with Stale set; a zero stale window never goes stale.
func (c *Client) Peek(key Key, stale time.Duration) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Result{Loading: true}
	}
	r := Result{Data: e.data, Err: e.err, FetchedAt: e.fetchedAt, Loading: !e.hasData && e.err == nil}
	if e.hasData && stale > 0 && c.now().Sub(e.fetchedAt) >= stale {
		r.Stale = true
	}
	return r
}

// Load runs fn for key and caches the outcome. Concurrent loads of the same
// key share one call. A failed load keeps previously cached data.
func (c *Client) Load(ctx context.Context, key Key, fn Func) (any, error) {
	v, err, shared := c.group.Do(key.String(), func() (any, error) {
		start := c.now()
		data, err := fn(ctx)
		c.store(key, data, err)
		c.logger.Debug("fetch", "key", key.String(), "duration_ms", c.now().Sub(start).Milliseconds(), "error", err)
		return data, err
	})
	if shared {
		c.logger.Debug("fetch deduplicated", "key", key.String())
	}
	return v, err
}

// Invalidate drops the cached result for key.
func (c *Client) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Client) store(key Key, data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.err = err
	if err != nil {
		return
	}
	e.data = data
	e.hasData = true
	e.fetchedAt = c.now()
}
