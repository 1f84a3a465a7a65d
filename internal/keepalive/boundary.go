package keepalive

import tea "github.com/charmbracelet/bubbletea"

// Boundary wraps a view that should be kept alive under name. It renders
// nothing itself; its only job is to get its children into the registry
// the first time the route is composed.
type Boundary struct {
	name     string
	children Content
}

// NewBoundary wraps children for registration under name.
func NewBoundary(name string, children Content) *Boundary {
	return &Boundary{name: name, children: children}
}

// Name returns the logical view name.
func (b *Boundary) Name() string { return b.name }

// Children returns the wrapped live content.
func (b *Boundary) Children() Content { return b.children }

// Mount registers the children unless the registry already holds an entry
// for the name, in which case it does nothing.
func (b *Boundary) Mount(r *Registry) bool {
	if _, ok := r.Lookup(b.name); ok {
		return false
	}
	return r.Register(b.name, b.children)
}

// Update forwards to the children.
func (b *Boundary) Update(msg tea.Msg) tea.Cmd {
	return b.children.Update(msg)
}

// View renders nothing; visibility is decided by composition.
func (b *Boundary) View() string { return "" }
