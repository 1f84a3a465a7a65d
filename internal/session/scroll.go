package session

import "strconv"

const (
	scrollSuffix    = ".scroll"
	returningSuffix = ".returning"
)

// ScrollKey is the store key holding a view's last scroll offset.
func ScrollKey(view string) string { return view + scrollSuffix }

// ReturningKey is the store key holding a view's "returning" flag.
func ReturningKey(view string) string { return view + returningSuffix }

// ScrollMemo remembers a view's scroll offset so it can be restored when the
// user comes back to it, and only then.
type ScrollMemo struct {
	store *Store
}

// NewScrollMemo creates a memo over store.
func NewScrollMemo(store *Store) *ScrollMemo {
	return &ScrollMemo{store: store}
}

// Record stores the view's current offset. Called on every scroll while
// the view is visible.
func (m *ScrollMemo) Record(view string, offset int) {
	m.store.Set(ScrollKey(view), strconv.Itoa(offset))
}

// MarkReturning flags that the next activation of view is a return to it.
// Call before navigating away from view.
func (m *ScrollMemo) MarkReturning(view string) {
	m.store.Set(ReturningKey(view), "true")
}

// Returning reports whether the returning flag is set for view.
func (m *ScrollMemo) Returning(view string) bool {
	v, _ := m.store.Get(ReturningKey(view))
	return v == "true"
}

// Offset returns the recorded offset for view.
func (m *ScrollMemo) Offset(view string) (int, bool) {
	v, ok := m.store.Get(ScrollKey(view))
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Restore returns the offset to apply when the returning flag is set and an
// offset was recorded. Both keys are cleared either way, so an offset is
// applied at most once.
func (m *ScrollMemo) Restore(view string) (int, bool) {
	returning := m.Returning(view)
	offset, ok := m.Offset(view)

	m.store.Delete(ReturningKey(view))
	m.store.Delete(ScrollKey(view))

	if !returning || !ok {
		return 0, false
	}
	return offset, true
}
