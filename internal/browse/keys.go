package browse

import "github.com/charmbracelet/bubbles/key"

// globalKeys holds bindings handled by the root model.
type globalKeys struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
}

// listKeys holds key bindings for the product list.
type listKeys struct {
	Up       key.Binding
	Down     key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Open     key.Binding
	Search   key.Binding
	Refresh  key.Binding
	Back     key.Binding
}

// searchKeys holds key bindings while the search box has focus.
type searchKeys struct {
	Submit key.Binding
	Cancel key.Binding
}

// detailKeys holds key bindings for the product detail page.
type detailKeys struct {
	Back     key.Binding
	Refresh  key.Binding
	PageDown key.Binding
	PageUp   key.Binding
}

// pageKeys holds key bindings for the static home and not-found pages.
type pageKeys struct {
	Open key.Binding
	Back key.Binding
}

// helpKeys adapts a flat binding list to help.KeyMap.
type helpKeys []key.Binding

// ShortHelp returns the bindings for the help bar.
func (k helpKeys) ShortHelp() []key.Binding { return k }

// FullHelp returns the bindings as a single column.
func (k helpKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k} }

// GlobalKeyMap returns the root model's key bindings.
func GlobalKeyMap() globalKeys {
	return globalKeys{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ListKeyMap returns the key bindings for the product list.
func ListKeyMap() listKeys {
	return listKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f", " "),
			key.WithHelp("pgdn", "page down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// SearchKeyMap returns the key bindings while searching.
func SearchKeyMap() searchKeys {
	return searchKeys{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search now"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "done"),
		),
	}
}

// DetailKeyMap returns the key bindings for the detail page.
func DetailKeyMap() detailKeys {
	return detailKeys{
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "left", "h"),
			key.WithHelp("esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "down", "j"),
			key.WithHelp("↓/j", "scroll"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "up", "k"),
		),
	}
}

// PageKeyMap returns the key bindings for static pages.
func PageKeyMap() pageKeys {
	return pageKeys{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "browse products"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
	}
}
