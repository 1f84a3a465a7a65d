package keepalive

import (
	"fmt"
	"sort"
	"strings"
)

// RouteTable is the static path -> view name mapping. Paths missing from
// the table have no keep-alive view.
type RouteTable struct {
	names map[string]string
}

// NewRouteTable builds a table from path/name pairs. Paths are normalized
// the same way lookups are.
// Panics on an empty path or name (programmer error).
func NewRouteTable(routes map[string]string) RouteTable {
	names := make(map[string]string, len(routes))
	for path, name := range routes {
		if path == "" || name == "" {
			panic(fmt.Sprintf("keepalive: invalid route %q -> %q", path, name))
		}
		names[RoutePath(path)] = name
	}
	return RouteTable{names: names}
}

// Lookup returns the view name for path. The query string is ignored.
func (t RouteTable) Lookup(path string) (string, bool) {
	name, ok := t.names[RoutePath(path)]
	return name, ok
}

// Paths returns the mapped paths in sorted order.
func (t RouteTable) Paths() []string {
	out := make([]string, 0, len(t.names))
	for p := range t.names {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RoutePath strips the query string, fragment and any trailing slash, so
// "/products/?search=x" and "/products" name the same route.
func RoutePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	if path == "" {
		return "/"
	}
	return path
}
