package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/shelf"
	"github.com/smileynet/shelf/internal/api"
	"github.com/smileynet/shelf/internal/browse"
	"github.com/smileynet/shelf/internal/catalog"
	"github.com/smileynet/shelf/internal/config"
	"github.com/smileynet/shelf/internal/fetch"
	"github.com/smileynet/shelf/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for shelf.
type CLI struct {
	Version  kong.VersionFlag `help:"Show version." short:"V"`
	Browse   BrowseCmd        `cmd:"" help:"Browse the product catalog in the terminal."`
	Serve    ServeCmd         `cmd:"" help:"Serve the mock product API."`
	Products ProductsCmd      `cmd:"" help:"Print the product catalog as plain text."`
}

// BrowseCmd opens the interactive catalog browser.
type BrowseCmd struct {
	API  string `help:"Product API base URL. Empty reads the catalog in-process." placeholder:"URL"`
	Path string `help:"Route to open first." placeholder:"PATH"`
}

// ServeCmd runs the mock product API.
type ServeCmd struct {
	Listen string `help:"Address to listen on." placeholder:"ADDR"`
}

// ProductsCmd lists products without the TUI.
type ProductsCmd struct {
	Search string `help:"Only list products whose name contains this text." short:"s"`
}

// setupError marks failures that happen before a command starts its work.
type setupError struct{ err error }

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

func setup(err error) error { return &setupError{err: err} }

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/shelf/config.yaml"),
		".shelf/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCatalog reads the product feed, preferring .shelf/ over the embedded copy.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(shelf.OverlayFS(".shelf", shelf.Data), cfg.Catalog.File)
}

// --- Browse command ---

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the browser.
func (b *BrowseCmd) Run() error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return b.run(false, nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return setup(fmt.Errorf("browse: %w", err))
	}
	b.apply(cfg)

	logger, closeLog, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return setup(fmt.Errorf("browse: %w", err))
	}
	defer func() { _ = closeLog() }()

	src, err := b.source(cfg)
	if err != nil {
		return setup(fmt.Errorf("browse: %w", err))
	}

	m := browse.NewModel(src,
		browse.WithRoutes(cfg.KeepAlive.Routes),
		browse.WithStartPath(cfg.Browse.StartPath),
		browse.WithStaleTime(cfg.Browse.StaleTime),
		browse.WithSearchDebounce(cfg.Browse.SearchDebounce),
		browse.WithRequestTimeout(cfg.Browse.RequestTimeout),
		browse.WithLogger(logger),
	)
	logger.Info("browse started", "start", cfg.Browse.StartPath, "api", cfg.Browse.APIURL)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	return b.run(true, p)
}

// apply lets flags override the loaded config.
func (b *BrowseCmd) apply(cfg *config.Config) {
	if b.API != "" {
		cfg.Browse.APIURL = b.API
	}
	if b.Path != "" {
		cfg.Browse.StartPath = b.Path
	}
}

// source picks the HTTP API when a URL is configured, otherwise the local feed.
func (b *BrowseCmd) source(cfg *config.Config) (fetch.Source, error) {
	if cfg.Browse.APIURL != "" {
		return fetch.NewHTTPSource(cfg.Browse.APIURL, &http.Client{Timeout: cfg.Browse.RequestTimeout}), nil
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// run executes the browser with the given tea program, enabling testable wiring.
func (b *BrowseCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return setup(fmt.Errorf("browse: requires a terminal (TTY)"))
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

// --- Serve command ---

// Run serves the mock API until interrupted.
func (s *ServeCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return setup(fmt.Errorf("serve: %w", err))
	}
	if s.Listen != "" {
		cfg.Server.Listen = s.Listen
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		return setup(fmt.Errorf("serve: %w", err))
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return setup(fmt.Errorf("serve: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.run(ctx, cfg, cat, logger)
}

// run starts the API over cat, enabling testable wiring.
func (s *ServeCmd) run(ctx context.Context, cfg *config.Config, cat api.Catalog, logger *slog.Logger) error {
	srv := api.New(cat, logger, api.WithLatency(cfg.Server.Latency))
	if err := srv.Start(ctx, cfg.Server.Listen); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// --- Products command ---

// Run prints the catalog to stdout.
func (p *ProductsCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return setup(fmt.Errorf("products: %w", err))
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return setup(fmt.Errorf("products: %w", err))
	}
	return p.run(context.Background(), os.Stdout, cat)
}

// run writes one line per matching product to w.
func (p *ProductsCmd) run(ctx context.Context, w io.Writer, src fetch.Source) error {
	products, err := src.Products(ctx, p.Search)
	if err != nil {
		return fmt.Errorf("products: %w", err)
	}
	if len(products) == 0 {
		_, _ = fmt.Fprintf(w, "No products matching %q\n", p.Search)
		return nil
	}
	for _, pr := range products {
		_, _ = fmt.Fprintf(w, "%4d  %-40s  $%s (was $%s)  %.1f (%s reviews)\n",
			pr.ID, pr.Name,
			catalog.FormatPrice(pr.SalePrice), catalog.FormatPrice(pr.OriginalPrice),
			pr.Rating, catalog.FormatShort(pr.ReviewCount))
	}
	_, _ = fmt.Fprintf(w, "%d products\n", len(products))
	return nil
}

const (
	exitSuccess = 0
	exitFailure = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *setupError
	if errors.As(err, &se) {
		return exitSetup
	}
	return exitFailure
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("shelf"),
		kong.Description("Keep-alive catalog browser and mock product API."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
