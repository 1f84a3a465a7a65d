package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/shelf/internal/catalog"
	"github.com/smileynet/shelf/internal/fetch"
	"github.com/smileynet/shelf/internal/keepalive"
	"github.com/smileynet/shelf/internal/session"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execCmd runs cmd and flattens batches into the resulting messages.
// Spinner ticks and cursor blinks are dropped to avoid endless loops.
func execCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg, cursor.BlinkMsg:
		return nil
	case tea.BatchMsg:
		var msgs []tea.Msg
		for _, c := range msg {
			msgs = append(msgs, execCmd(t, c)...)
		}
		return msgs
	default:
		return []tea.Msg{msg}
	}
}

// run feeds msg to m, then feeds every resulting message back until the
// model settles.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("message loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if _, quit := next.(tea.QuitMsg); quit {
			continue
		}
		updated, cmd := m.Update(next)
		m = updated.(Model)
		queue = append(queue, execCmd(t, cmd)...)
	}
	return m
}

// runCmd executes cmd and feeds its messages into m.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range execCmd(t, cmd) {
		m = run(t, m, msg)
	}
	return m
}

// startModel runs Init and sizes the terminal to 80x24, which leaves a
// 20-line list viewport.
func startModel(t *testing.T, src fetch.Source, opts ...Option) Model {
	t.Helper()
	opts = append([]Option{WithSearchDebounce(0)}, opts...)
	m := NewModel(src, opts...)
	m = runCmd(t, m, m.Init())
	return run(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func keyPress(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// numberedCatalog returns n products named "Product 001".. with IDs 1..n.
func numberedCatalog(n int) *catalog.Catalog {
	products := make([]catalog.Product, n)
	for i := range products {
		products[i] = catalog.Product{
			ID:            i + 1,
			Name:          fmt.Sprintf("Product %03d", i+1),
			OriginalPrice: 200,
			SalePrice:     100,
			Rating:        4.5,
			ReviewCount:   1200,
		}
	}
	return catalog.New(products)
}

func sampleCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Product{
		{ID: 1, Name: "Wireless Mouse", OriginalPrice: 599, SalePrice: 399, Rating: 4.5, ReviewCount: 2315},
		{ID: 2, Name: "USB Hub", OriginalPrice: 159, SalePrice: 129, Rating: 4.1, ReviewCount: 88},
		{ID: 3, Name: "USB-C Fast Charging Cable", OriginalPrice: 199, SalePrice: 99, Rating: 4.8, ReviewCount: 12890,
			Description: "Braided 2m cable rated for 100W."},
	})
}

// failingSource fails every request.
type failingSource struct{ err error }

func (f failingSource) Products(context.Context, string) ([]catalog.Product, error) {
	return nil, f.err
}

func (f failingSource) Product(context.Context, int) (catalog.Product, error) {
	return catalog.Product{}, f.err
}

var errFeedDown = errors.New("feed unavailable")

// testDeps builds view dependencies over src with a fresh session.
func testDeps(src fetch.Source) (*deps, *session.Store) {
	store := session.NewStore()
	return &deps{
		source:   src,
		fetcher:  fetch.NewClient(),
		memo:     session.NewScrollMemo(store),
		stale:    time.Minute,
		debounce: 500 * time.Millisecond,
		timeout:  time.Second,
		logger:   slog.New(slog.DiscardHandler),
	}, store
}

// activeList returns the cached product list entry.
func activeList(t *testing.T, m Model) *listView {
	t.Helper()
	e, ok := m.registry.Lookup(defaultListName)
	if !ok {
		t.Fatalf("no %s entry cached", defaultListName)
	}
	l, ok := e.Content.(*listView)
	if !ok {
		t.Fatalf("%s entry is %T, want *listView", defaultListName, e.Content)
	}
	return l
}

func isMounted(f keepalive.Frame, c keepalive.Content) bool {
	for _, mc := range f.Mounted() {
		if mc == c {
			return true
		}
	}
	return false
}
