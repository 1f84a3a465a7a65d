// Package browse implements the catalog browser TUI. The root model keeps
// route views mounted through the keep-alive registry: a cached product
// list survives trips to a detail page with its scroll offset, search box
// and loaded data intact.
package browse

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/shelf/internal/fetch"
	"github.com/smileynet/shelf/internal/router"
)

// --- View hooks ---

// Initializer is implemented by views that start work when first mounted.
type Initializer interface {
	Init() tea.Cmd
}

// Activator is implemented by views that react to becoming the visible
// view after a route change, whether freshly mounted or shown from cache.
type Activator interface {
	Activated(nav router.Navigation) tea.Cmd
}

// InputCapturer is implemented by views that can take over plain key
// input, such as a focused search box. While capturing, only ctrl+c is
// handled globally.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyHelper is implemented by views that contribute bindings to the help bar.
type KeyHelper interface {
	HelpKeys() []key.Binding
}

// --- tea.Msg types ---

// NavigateMsg asks the root model to push Path onto the history.
type NavigateMsg struct {
	Path       string
	KeepScroll bool // Push without scroll reset.
}

// BackMsg asks the root model to pop the history.
type BackMsg struct{}

// productsLoadedMsg signals a list query finished; data lives in the fetcher.
type productsLoadedMsg struct {
	key fetch.Key
	err error
}

// productLoadedMsg signals a detail query finished.
type productLoadedMsg struct {
	key fetch.Key
	err error
}

// searchDebounceMsg fires after the search box has been idle for the
// debounce interval. Stale sequence numbers are ignored.
type searchDebounceMsg struct {
	view  string
	seq   int
	query string
}

func navigate(path string, keepScroll bool) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path, KeepScroll: keepScroll} }
}

func back() tea.Msg { return BackMsg{} }
