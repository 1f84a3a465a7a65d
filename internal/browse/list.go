package browse

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/shelf/internal/catalog"
	"github.com/smileynet/shelf/internal/fetch"
	"github.com/smileynet/shelf/internal/router"
)

const (
	// listChrome is the number of lines above the viewport: header and search box.
	listChrome = 2
	// linesPerItem is the height of one product row in the viewport.
	linesPerItem = 3
	// defaultListName is the memo key prefix when the list route is not kept alive.
	defaultListName = "ProductList"
)

// listView is the product list: a search box over a scrollable viewport.
// It is built once per keep-alive entry and keeps its viewport, query and
// spinner while hidden.
type listView struct {
	name   string
	deps   *deps
	keys   listKeys
	search searchKeys

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	width    int

	searching   bool
	query       string
	debounceSeq int

	key        fetch.Key
	result     fetch.Result
	products   []catalog.Product
	hasData    bool
	refreshing bool

	cursor  int
	pending int // Offset to apply once data arrives; -1 when none.
	ticks   int
}

func newListView(name string, d *deps, width, height int) *listView {
	s := spinner.New()
	s.Spinner = spinner.Dot

	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search products"
	in.CharLimit = 64

	l := &listView{
		name:     name,
		deps:     d,
		keys:     ListKeyMap(),
		search:   SearchKeyMap(),
		viewport: viewport.New(width, 1),
		input:    in,
		spinner:  s,
		pending:  -1,
	}
	l.resize(width, height)
	return l
}

// Init starts the spinner. Data loading waits for the first activation,
// which knows the route's search query.
func (l *listView) Init() tea.Cmd {
	return l.spinner.Tick
}

// Activated applies the route's search query and the scroll memo.
func (l *listView) Activated(nav router.Navigation) tea.Cmd {
	l.setQuery(router.Query(nav.Path).Get("search"))

	offset, ok := l.deps.memo.Restore(l.name)
	switch {
	case ok:
		l.pending = offset
		l.deps.logger.Debug("scroll restore", "view", l.name, "offset", offset, "loaded", l.hasData)
	case nav.ResetScroll:
		l.pending = -1
		l.cursor = 0
		l.viewport.GotoTop()
	}
	return l.sync(true)
}

// CapturingInput reports whether the search box has focus.
func (l *listView) CapturingInput() bool { return l.searching }

// HelpKeys returns the bindings for the current input mode.
func (l *listView) HelpKeys() []key.Binding {
	if l.searching {
		return []key.Binding{l.search.Submit, l.search.Cancel}
	}
	return []key.Binding{l.keys.Up, l.keys.Down, l.keys.PageDown, l.keys.Open, l.keys.Search, l.keys.Refresh}
}

// Update handles messages for the list, visible or not.
func (l *listView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.resize(msg.Width, msg.Height)
		return nil

	case spinner.TickMsg:
		if msg.ID != l.spinner.ID() {
			return nil
		}
		l.ticks++
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return cmd

	case productsLoadedMsg:
		if msg.key != l.key {
			return nil
		}
		l.refreshing = false
		if msg.err != nil {
			l.deps.logger.Warn("loading products failed", "key", msg.key.String(), "error", msg.err)
		}
		return l.sync(false)

	case searchDebounceMsg:
		if msg.view != l.name || msg.seq != l.debounceSeq {
			return nil
		}
		return l.commitSearch(msg.query)

	case tea.MouseMsg:
		before := l.viewport.YOffset
		var cmd tea.Cmd
		l.viewport, cmd = l.viewport.Update(msg)
		l.recordScroll(before)
		return cmd

	case tea.KeyMsg:
		if l.searching {
			return l.handleSearchKey(msg)
		}
		return l.handleKey(msg)
	}

	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return cmd
}

func (l *listView) handleKey(msg tea.KeyMsg) tea.Cmd {
	before := l.viewport.YOffset
	defer l.recordScroll(before)

	switch {
	case key.Matches(msg, l.keys.Up):
		if l.cursor > 0 {
			l.cursor--
			l.render()
			l.ensureCursorVisible()
		}
	case key.Matches(msg, l.keys.Down):
		if l.cursor < len(l.products)-1 {
			l.cursor++
			l.render()
			l.ensureCursorVisible()
		}
	case key.Matches(msg, l.keys.PageDown):
		l.viewport.SetYOffset(l.viewport.YOffset + l.viewport.Height)
	case key.Matches(msg, l.keys.PageUp):
		l.viewport.SetYOffset(l.viewport.YOffset - l.viewport.Height)
	case key.Matches(msg, l.keys.Open):
		if l.cursor < len(l.products) {
			l.deps.memo.MarkReturning(l.name)
			return navigate(productPath(l.products[l.cursor].ID), false)
		}
	case key.Matches(msg, l.keys.Search):
		l.searching = true
		return l.input.Focus()
	case key.Matches(msg, l.keys.Refresh):
		l.refreshing = true
		return l.load()
	case key.Matches(msg, l.keys.Back):
		return back
	}
	return nil
}

func (l *listView) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, l.search.Submit):
		l.searching = false
		l.input.Blur()
		l.debounceSeq++
		return l.commitSearch(l.input.Value())
	case key.Matches(msg, l.search.Cancel):
		l.searching = false
		l.input.Blur()
		return nil
	}

	prev := l.input.Value()
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	q := l.input.Value()
	if q == prev {
		return cmd
	}

	l.debounceSeq++
	if l.deps.debounce <= 0 {
		return tea.Batch(cmd, l.commitSearch(q))
	}
	seq, name := l.debounceSeq, l.name
	return tea.Batch(cmd, tea.Tick(l.deps.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{view: name, seq: seq, query: q}
	}))
}

// commitSearch pushes the search route without resetting the scroll offset.
// The term is used as typed; only an empty box clears the search.
func (l *listView) commitSearch(q string) tea.Cmd {
	if q == l.query {
		return nil
	}
	v := url.Values{}
	if q != "" {
		v.Set("search", q)
	}
	return navigate(router.WithQuery(routeProducts, v), true)
}

func (l *listView) setQuery(q string) {
	if q == l.query && l.key.View != "" {
		return
	}
	l.query = q
	if !l.searching {
		l.input.SetValue(q)
	}
	l.key = productsKey(q)
	l.cursor = 0
}

// sync re-reads the list query from the fetcher and renders it. With load
// set, a missing, stale or failed result starts a fetch.
func (l *listView) sync(load bool) tea.Cmd {
	l.result = l.deps.fetcher.Peek(l.key, l.deps.stale)
	l.products, l.hasData = l.result.Data.([]catalog.Product)
	if l.cursor >= len(l.products) {
		l.cursor = max(len(l.products)-1, 0)
	}
	l.render()

	if l.hasData && l.pending >= 0 {
		l.viewport.SetYOffset(l.pending)
		l.deps.logger.Debug("scroll restored", "view", l.name, "offset", l.viewport.YOffset)
		l.pending = -1
	}

	if load && (l.result.NeedsLoad() || (l.result.IsError() && !l.hasData)) {
		return l.load()
	}
	return nil
}

func (l *listView) load() tea.Cmd {
	d, k, search := l.deps, l.key, l.query
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_, err := d.fetcher.Load(ctx, k, func(ctx context.Context) (any, error) {
			return d.source.Products(ctx, search)
		})
		return productsLoadedMsg{key: k, err: err}
	}
}

// recordScroll writes the offset to the memo when it moved.
func (l *listView) recordScroll(before int) {
	if l.viewport.YOffset != before {
		l.deps.memo.Record(l.name, l.viewport.YOffset)
	}
}

func (l *listView) ensureCursorVisible() {
	top := l.cursor * linesPerItem
	bottom := top + linesPerItem - 1
	switch {
	case top < l.viewport.YOffset:
		l.viewport.SetYOffset(top)
	case bottom >= l.viewport.YOffset+l.viewport.Height:
		l.viewport.SetYOffset(bottom - l.viewport.Height + 1)
	}
}

func (l *listView) resize(width, height int) {
	l.width = width
	l.viewport.Width = width
	l.viewport.Height = max(height-listChrome, 1)
	l.input.Width = max(width-len(l.input.Prompt)-1, 1)
	l.render()
}

// render rebuilds the viewport content from the current products.
func (l *listView) render() {
	var b strings.Builder
	for i, p := range l.products {
		if i > 0 {
			b.WriteByte('\n')
		}
		marker, name := "  ", p.Name
		if i == l.cursor {
			marker, name = CursorMarker, selectedStyle.Render(p.Name)
		}
		b.WriteString(truncate(marker+name, l.width))
		b.WriteByte('\n')
		b.WriteString(truncate("    "+PriceLine(p), l.width))
		b.WriteByte('\n')
		b.WriteString(truncate("    "+RatingLine(p), l.width))
	}
	l.viewport.SetContent(b.String())
}

// View renders the header, search box and list body.
func (l *listView) View() string {
	header := titleStyle.Render("Products") +
		mutedText.Render(fmt.Sprintf(" · %d items · scroll %d", len(l.products), l.viewport.YOffset))
	if l.refreshing {
		header += " " + l.spinner.View()
	}
	if l.hasData && l.result.IsError() {
		header += " " + errorText.Render("refresh failed")
	}

	searchLine := mutedText.Render("/ search")
	if l.searching || l.query != "" {
		searchLine = l.input.View()
	}

	var body string
	switch {
	case !l.hasData && l.result.IsError():
		body = errorText.Render(fmt.Sprintf("Error: %s", l.result.Err)) + "\n\nPress r to retry"
	case !l.hasData:
		body = fmt.Sprintf("%s Loading products...", l.spinner.View())
	case len(l.products) == 0 && l.query != "":
		body = mutedText.Render(fmt.Sprintf("No products matching %q", l.query))
	case len(l.products) == 0:
		body = mutedText.Render("No products")
	default:
		body = l.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, searchLine, body)
}

func productsKey(search string) fetch.Key {
	if search == "" {
		return fetch.Key{View: "products"}
	}
	return fetch.Key{View: "products", Params: url.Values{"search": {search}}.Encode()}
}

func productPath(id int) string {
	return routeProducts + "/" + strconv.Itoa(id)
}
