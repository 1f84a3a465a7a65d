package keepalive

// State is the composition outcome for one route evaluation.
type State int

const (
	StateDirect  State = iota // Route has no keep-alive view; children render directly.
	StateCached               // Active view is cached; cached entry is shown.
	StateCapture              // Active view is not cached yet; children render and get registered.
)

func (s State) String() string {
	switch s {
	case StateDirect:
		return "direct"
	case StateCached:
		return "cached"
	case StateCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// Slot is a cached entry placed in a frame. Hidden slots stay mounted.
type Slot struct {
	Name    string
	Content Content
	Visible bool
}

// Frame is what the renderer draws for the current route.
type Frame struct {
	State    State
	Active   string
	Children Content // Fresh route content; nil in StateCached.
	Slots    []Slot  // Every cached entry; at most one Visible.
}

// Visible returns the content drawn on screen, or nil for an empty frame.
func (f Frame) Visible() Content {
	if f.Children != nil {
		return f.Children
	}
	for _, s := range f.Slots {
		if s.Visible {
			return s.Content
		}
	}
	return nil
}

// Mounted returns every live content in the frame, children first.
func (f Frame) Mounted() []Content {
	out := make([]Content, 0, len(f.Slots)+1)
	if f.Children != nil {
		out = append(out, f.Children)
	}
	for _, s := range f.Slots {
		if s.Content == f.Children {
			continue
		}
		out = append(out, s.Content)
	}
	return out
}

// Compose evaluates the current route. mount builds the route's fresh
// content and is only called when that content will be drawn: never when
// the active view is already cached. A *Boundary returned by mount is
// registered in the same call and unwrapped, so the captured instance is
// the one on screen.
func (r *Registry) Compose(mount func() Content) Frame {
	name, ok := r.ActiveName()
	if !ok {
		return Frame{State: StateDirect, Children: mountContent(mount), Slots: r.slots("")}
	}
	if _, cached := r.entries[name]; cached {
		return Frame{State: StateCached, Active: name, Slots: r.slots(name)}
	}

	f := Frame{State: StateCapture, Active: name, Slots: r.slots("")}
	children := mountContent(mount)
	if b, isBoundary := children.(*Boundary); isBoundary {
		b.Mount(r)
		children = b.Children()
	}
	f.Children = children
	return f
}

// Unmounter is implemented by content that releases resources when it
// leaves the tree.
type Unmounter interface {
	Unmount()
}

// Release unmounts the fresh children of a replaced frame. Cached content
// is never unmounted, only hidden.
func (r *Registry) Release(prev Frame) {
	if prev.Children == nil {
		return
	}
	for _, e := range r.entries {
		if e.Content == prev.Children {
			return
		}
	}
	if u, ok := prev.Children.(Unmounter); ok {
		u.Unmount()
	}
}

func (r *Registry) slots(visible string) []Slot {
	entries := r.Entries()
	out := make([]Slot, len(entries))
	for i, e := range entries {
		out[i] = Slot{Name: e.Name, Content: e.Content, Visible: e.Name == visible}
	}
	return out
}

func mountContent(mount func() Content) Content {
	if mount == nil {
		return nil
	}
	return mount()
}
