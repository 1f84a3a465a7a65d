package browse

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// homeView is the landing page at "/".
type homeView struct {
	keys pageKeys
}

func newHomeView() *homeView {
	return &homeView{keys: PageKeyMap()}
}

func (h *homeView) HelpKeys() []key.Binding { return []key.Binding{h.keys.Open} }

func (h *homeView) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, h.keys.Open) {
		return navigate(routeProducts, false)
	}
	return nil
}

func (h *homeView) View() string {
	return titleStyle.Render("shelf") + "\n\n" +
		"A catalog browser that keeps the product list alive between pages.\n\n" +
		mutedText.Render("Press enter to browse products")
}

// notFoundView is shown for paths no route matches.
type notFoundView struct {
	path string
	keys pageKeys
}

func newNotFoundView(path string) *notFoundView {
	keys := PageKeyMap()
	keys.Open.SetHelp("enter", "home")
	return &notFoundView{path: path, keys: keys}
}

func (n *notFoundView) HelpKeys() []key.Binding { return []key.Binding{n.keys.Back, n.keys.Open} }

func (n *notFoundView) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, n.keys.Back):
		return back
	case key.Matches(km, n.keys.Open):
		return navigate(routeHome, false)
	}
	return nil
}

func (n *notFoundView) View() string {
	return errorText.Render("Page not found") + "\n\n" +
		mutedText.Render("Nothing lives at "+n.path)
}
