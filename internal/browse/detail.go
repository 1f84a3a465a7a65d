package browse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/shelf/internal/catalog"
	"github.com/smileynet/shelf/internal/fetch"
)

// detailView shows one product. It is mounted fresh for every visit and
// cancels its in-flight request when unmounted.
type detailView struct {
	deps *deps
	keys detailKeys

	id    int
	valid bool
	key   fetch.Key

	result  fetch.Result
	product catalog.Product
	hasData bool

	viewport viewport.Model
	spinner  spinner.Model
	width    int

	ctx       context.Context
	cancel    context.CancelFunc
	unmounted bool
}

func newDetailView(rawID string, d *deps, width, height int) *detailView {
	id, err := strconv.Atoi(rawID)

	s := spinner.New()
	s.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())
	dv := &detailView{
		deps:     d,
		keys:     DetailKeyMap(),
		id:       id,
		valid:    err == nil && id > 0,
		key:      fetch.Key{View: "product", Params: "id=" + strconv.Itoa(id)},
		viewport: viewport.New(width, max(height, 1)),
		spinner:  s,
		width:    width,
		ctx:      ctx,
		cancel:   cancel,
	}
	return dv
}

// Init starts the spinner and the product query.
func (dv *detailView) Init() tea.Cmd {
	if !dv.valid {
		return nil
	}
	return tea.Batch(dv.spinner.Tick, dv.sync(true))
}

// Unmount cancels any in-flight request.
func (dv *detailView) Unmount() {
	dv.unmounted = true
	dv.cancel()
	dv.deps.logger.Debug("detail unmounted", "id", dv.id)
}

// HelpKeys returns the detail bindings.
func (dv *detailView) HelpKeys() []key.Binding {
	return []key.Binding{dv.keys.Back, dv.keys.PageDown, dv.keys.Refresh}
}

// Update handles messages for the detail page.
func (dv *detailView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		dv.width = msg.Width
		dv.viewport.Width = msg.Width
		dv.viewport.Height = max(msg.Height, 1)
		dv.render()
		return nil

	case spinner.TickMsg:
		if msg.ID != dv.spinner.ID() {
			return nil
		}
		var cmd tea.Cmd
		dv.spinner, cmd = dv.spinner.Update(msg)
		return cmd

	case productLoadedMsg:
		if msg.key != dv.key || dv.unmounted {
			return nil
		}
		// Loads are shared per key; an earlier visit's unmount can cancel ours.
		if errors.Is(msg.err, context.Canceled) {
			dv.deps.logger.Debug("product load cancelled, retrying", "id", dv.id)
			return dv.load()
		}
		if msg.err != nil && !errors.Is(msg.err, catalog.ErrNotFound) {
			dv.deps.logger.Warn("loading product failed", "id", dv.id, "error", msg.err)
		}
		return dv.sync(false)

	case tea.MouseMsg:
		var cmd tea.Cmd
		dv.viewport, cmd = dv.viewport.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, dv.keys.Back):
			return back
		case key.Matches(msg, dv.keys.Refresh):
			if dv.valid {
				return dv.load()
			}
		case key.Matches(msg, dv.keys.PageDown):
			dv.viewport.SetYOffset(dv.viewport.YOffset + 1)
		case key.Matches(msg, dv.keys.PageUp):
			dv.viewport.SetYOffset(dv.viewport.YOffset - 1)
		}
	}
	return nil
}

func (dv *detailView) sync(load bool) tea.Cmd {
	dv.result = dv.deps.fetcher.Peek(dv.key, dv.deps.stale)
	dv.product, dv.hasData = dv.result.Data.(catalog.Product)
	dv.render()
	if load && (dv.result.NeedsLoad() || (dv.result.IsError() && !dv.hasData)) {
		return dv.load()
	}
	return nil
}

func (dv *detailView) load() tea.Cmd {
	d, k, id, parent := dv.deps, dv.key, dv.id, dv.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, d.timeout)
		defer cancel()
		_, err := d.fetcher.Load(ctx, k, func(ctx context.Context) (any, error) {
			return d.source.Product(ctx, id)
		})
		return productLoadedMsg{key: k, err: err}
	}
}

func (dv *detailView) notFound() bool {
	return !dv.valid || (!dv.hasData && errors.Is(dv.result.Err, catalog.ErrNotFound))
}

func (dv *detailView) render() {
	if !dv.hasData {
		dv.viewport.SetContent("")
		return
	}
	p := dv.product
	desc := lipgloss.NewStyle().Width(max(dv.width, 20)).Render(p.Description)

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString("\n\n")
	b.WriteString(PriceLine(p))
	b.WriteByte('\n')
	b.WriteString(RatingLine(p))
	b.WriteString("\n\n")
	b.WriteString(desc)
	b.WriteString("\n\n")
	b.WriteString(mutedText.Render(fmt.Sprintf("#%d · %s", p.ID, p.Image)))
	dv.viewport.SetContent(b.String())
}

// View renders the product, or its loading, error or not-found state.
func (dv *detailView) View() string {
	switch {
	case dv.notFound():
		return errorText.Render("Product not found") + "\n\n" + mutedText.Render("Press esc to go back")
	case !dv.hasData && dv.result.IsError() && !errors.Is(dv.result.Err, context.Canceled):
		return errorText.Render(fmt.Sprintf("Error: %s", dv.result.Err)) + "\n\nPress r to retry"
	case !dv.hasData:
		return fmt.Sprintf("%s Loading product...", dv.spinner.View())
	}
	return dv.viewport.View()
}
