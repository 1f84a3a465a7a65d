package browse

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-chi/chi/v5"

	"github.com/smileynet/shelf/internal/fetch"
	"github.com/smileynet/shelf/internal/keepalive"
	"github.com/smileynet/shelf/internal/router"
	"github.com/smileynet/shelf/internal/session"
)

// titleBarHeight is the number of lines reserved for the title bar at the top.
const titleBarHeight = 1

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// Route patterns understood by the browser.
const (
	routeHome     = "/"
	routeProducts = "/products"
	routeProduct  = "/products/{id}"
)

// deps is shared by every view the model mounts.
type deps struct {
	source   fetch.Source
	fetcher  *fetch.Client
	memo     *session.ScrollMemo
	stale    time.Duration
	debounce time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithFetcher shares a query cache with the model.
func WithFetcher(f *fetch.Client) Option {
	return func(m *Model) { m.deps.fetcher = f }
}

// WithRoutes sets the keep-alive route table (path -> view name).
func WithRoutes(routes map[string]string) Option {
	return func(m *Model) { m.routes = keepalive.NewRouteTable(routes) }
}

// WithStartPath sets the initial route.
func WithStartPath(path string) Option {
	return func(m *Model) { m.start = path }
}

// WithSession sets the session store backing the scroll memo.
func WithSession(s *session.Store) Option {
	return func(m *Model) { m.store = s }
}

// WithStaleTime sets how long fetched data is served without a refetch.
func WithStaleTime(d time.Duration) Option {
	return func(m *Model) { m.deps.stale = d }
}

// WithSearchDebounce sets the search box idle delay before a query runs.
func WithSearchDebounce(d time.Duration) Option {
	return func(m *Model) { m.deps.debounce = d }
}

// WithRequestTimeout bounds each product request.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Model) { m.deps.timeout = d }
}

// WithLogger sets the logger for navigation and cache events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// Model is the root Bubble Tea model. It owns the router and the keep-alive
// registry, composes a frame on every route change, and routes input to the
// visible view while every other message reaches all mounted views.
type Model struct {
	router   *router.Router
	registry *keepalive.Registry
	store    *session.Store
	routes   keepalive.RouteTable
	mux      *chi.Mux
	deps     *deps
	frame    keepalive.Frame
	start    string
	startCmd tea.Cmd
	logger   *slog.Logger

	width  int
	height int
	help   help.Model
	keys   globalKeys
}

// NewModel creates a browser over src positioned at the start path.
// Panics if src is nil (programmer error).
func NewModel(src fetch.Source, opts ...Option) Model {
	if src == nil {
		panic("browse: NewModel called with nil source")
	}
	m := Model{
		routes: keepalive.NewRouteTable(map[string]string{routeProducts: defaultListName}),
		start:  routeProducts,
		logger: slog.New(slog.DiscardHandler),
		help:   help.New(),
		keys:   GlobalKeyMap(),
		deps: &deps{
			source:   src,
			stale:    time.Minute,
			debounce: 500 * time.Millisecond,
			timeout:  5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.store == nil {
		m.store = session.NewStore()
	}
	m.logger = m.logger.With("session", m.store.ID())
	if m.deps.fetcher == nil {
		m.deps.fetcher = fetch.NewClient(fetch.WithLogger(m.logger))
	}
	m.deps.memo = session.NewScrollMemo(m.store)
	m.deps.logger = m.logger

	m.router = router.New(m.start)
	m.registry = keepalive.New(m.routes, m.router, keepalive.WithLogger(m.logger))
	m.mux = newRouteMux()
	m.startCmd = m.navigate(router.Navigation{Path: m.router.Path(), Intent: router.Forward, ResetScroll: true})
	return m
}

func newRouteMux() *chi.Mux {
	noop := func(http.ResponseWriter, *http.Request) {}
	mux := chi.NewRouter()
	mux.Get(routeHome, noop)
	mux.Get(routeProducts, noop)
	mux.Get(routeProduct, noop)
	return mux
}

// Init returns the start route's mount commands.
func (m Model) Init() tea.Cmd {
	return m.startCmd
}

// Update routes messages: navigation is handled here, key and mouse input
// goes to the visible view only, everything else to every mounted view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.broadcast(tea.WindowSizeMsg{Width: msg.Width, Height: m.contentHeight()})

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, deliver(m.frame.Visible(), msg)

	case NavigateMsg:
		var opts []router.PushOption
		if msg.KeepScroll {
			opts = append(opts, router.WithoutScrollReset())
		}
		nav := m.router.Push(msg.Path, opts...)
		return m, m.navigate(nav)

	case BackMsg:
		nav, ok := m.router.Back()
		if !ok {
			return m, nil
		}
		return m, m.navigate(nav)
	}

	return m, m.broadcast(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	visible := m.frame.Visible()
	if c, ok := visible.(InputCapturer); !ok || !c.CapturingInput() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	return m, deliver(visible, msg)
}

// navigate composes the frame for nav, unmounts replaced direct content,
// and runs the mount and activation hooks of the new content.
func (m *Model) navigate(nav router.Navigation) tea.Cmd {
	prev := m.frame
	var mounted keepalive.Content
	m.frame = m.registry.Compose(func() keepalive.Content {
		mounted = m.mount(nav.Path)
		return mounted
	})
	m.registry.Release(prev)

	m.logger.Debug("navigate",
		"path", nav.Path,
		"intent", nav.Intent.String(),
		"state", m.frame.State.String(),
		"view", m.frame.Active,
		"cached", m.registry.Len(),
	)

	var cmds []tea.Cmd
	if b, ok := mounted.(*keepalive.Boundary); ok {
		mounted = b.Children()
	}
	if in, ok := mounted.(Initializer); ok {
		cmds = append(cmds, in.Init())
	}
	if a, ok := m.frame.Visible().(Activator); ok {
		cmds = append(cmds, a.Activated(nav))
	}
	return tea.Batch(cmds...)
}

// mount builds fresh content for path, wrapped in a boundary when the
// route is kept alive.
func (m *Model) mount(path string) keepalive.Content {
	name, keep := m.registry.ActiveName()
	content := m.route(path, name)
	if keep {
		return keepalive.NewBoundary(name, content)
	}
	return content
}

func (m *Model) route(path, name string) keepalive.Content {
	w, h := m.width, m.contentHeight()
	rctx := chi.NewRouteContext()
	if !m.mux.Match(rctx, http.MethodGet, keepalive.RoutePath(path)) {
		return newNotFoundView(path)
	}
	switch rctx.RoutePattern() {
	case routeHome:
		return newHomeView()
	case routeProducts:
		if name == "" {
			name = defaultListName
		}
		return newListView(name, m.deps, w, h)
	case routeProduct:
		return newDetailView(rctx.URLParam("id"), m.deps, w, h)
	}
	return newNotFoundView(path)
}

func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, c := range m.frame.Mounted() {
		cmds = append(cmds, c.Update(msg))
	}
	return tea.Batch(cmds...)
}

func deliver(c keepalive.Content, msg tea.Msg) tea.Cmd {
	if c == nil {
		return nil
	}
	return c.Update(msg)
}

// contentHeight returns the usable height for the visible view.
func (m Model) contentHeight() int {
	h := m.height - titleBarHeight - helpBarHeight
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) helpKeys() helpKeys {
	var keys helpKeys
	if h, ok := m.frame.Visible().(KeyHelper); ok {
		keys = append(keys, h.HelpKeys()...)
	}
	return append(keys, m.keys.Help, m.keys.Quit)
}

// View renders the title bar, the visible view and the help bar.
// Hidden views stay mounted but are not drawn.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render("shelf") + "  " + m.router.Path() +
		mutedText.Render(fmt.Sprintf("  %s · %d cached", m.frame.State, m.registry.Len()))

	var body string
	if v := m.frame.Visible(); v != nil {
		body = v.View()
	}
	body = lipgloss.NewStyle().
		Height(m.contentHeight()).
		MaxHeight(m.contentHeight()).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, m.help.View(m.helpKeys()))
}
