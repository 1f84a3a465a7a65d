package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/shelf/internal/catalog"
	"github.com/smileynet/shelf/internal/config"
	"github.com/smileynet/shelf/internal/fetch"
)

func TestFeature_CLIParsing(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			name:    "browse with flags",
			args:    []string{"browse", "--api", "http://localhost:8080", "--path", "/products/3"},
			command: "browse",
			check: func(t *testing.T, cli *CLI) {
				if cli.Browse.API != "http://localhost:8080" {
					t.Errorf("API = %q, want http://localhost:8080", cli.Browse.API)
				}
				if cli.Browse.Path != "/products/3" {
					t.Errorf("Path = %q, want /products/3", cli.Browse.Path)
				}
			},
		},
		{
			name:    "serve with listen",
			args:    []string{"serve", "--listen", ":9090"},
			command: "serve",
			check: func(t *testing.T, cli *CLI) {
				if cli.Serve.Listen != ":9090" {
					t.Errorf("Listen = %q, want :9090", cli.Serve.Listen)
				}
			},
		},
		{
			name:    "products with short search flag",
			args:    []string{"products", "-s", "usb"},
			command: "products",
			check: func(t *testing.T, cli *CLI) {
				if cli.Products.Search != "usb" {
					t.Errorf("Search = %q, want usb", cli.Products.Search)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given a CLI parser
			var cli CLI
			k, err := kong.New(&cli, kong.Vars{"version": "test"})
			if err != nil {
				t.Fatal(err)
			}

			// When the arguments are parsed
			kctx, err := k.Parse(tt.args)
			if err != nil {
				t.Fatal(err)
			}

			// Then the command and its flags are set
			if kctx.Command() != tt.command {
				t.Errorf("got command %q, want %q", kctx.Command(), tt.command)
			}
			tt.check(t, &cli)
		})
	}

	t.Run("unknown command is rejected", func(t *testing.T) {
		var cli CLI
		k, err := kong.New(&cli, kong.Vars{"version": "test"})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := k.Parse([]string{"checkout"}); err == nil {
			t.Error("expected parse error for unknown command")
		}
	})
}

func TestFeature_BrowseCommand(t *testing.T) {
	t.Run("run returns setup error when not a TTY", func(t *testing.T) {
		// Given a BrowseCmd
		cmd := &BrowseCmd{}

		// When run is called with isTTY=false
		err := cmd.run(false, nil)

		// Then an error mentioning "terminal" is returned with the setup exit code
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "terminal") {
			t.Errorf("error = %q, want to contain 'terminal'", err)
		}
		if got := exitCode(err); got != exitSetup {
			t.Errorf("exitCode = %d, want %d", got, exitSetup)
		}
	})

	t.Run("run executes tea program when TTY", func(t *testing.T) {
		cmd := &BrowseCmd{}
		mock := &mockTeaRunner{}

		if err := cmd.run(true, mock); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !mock.ran {
			t.Error("tea program was not run")
		}
	})

	t.Run("run returns tea program error", func(t *testing.T) {
		cmd := &BrowseCmd{}
		mock := &mockTeaRunner{err: fmt.Errorf("tea: terminal error")}

		err := cmd.run(true, mock)

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "tea: terminal error") {
			t.Errorf("error = %q, want to contain tea error", err)
		}
		if got := exitCode(err); got != exitFailure {
			t.Errorf("exitCode = %d, want %d", got, exitFailure)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		// Given defaults and both browse flags
		cfg := config.DefaultConfig()
		cmd := &BrowseCmd{API: "http://api.test", Path: "/"}

		// When applied
		cmd.apply(&cfg)

		// Then both settings are replaced
		if cfg.Browse.APIURL != "http://api.test" || cfg.Browse.StartPath != "/" {
			t.Errorf("browse = %+v, want api http://api.test and start /", cfg.Browse)
		}
	})

	t.Run("empty flags keep config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		(&BrowseCmd{}).apply(&cfg)
		if cfg.Browse.StartPath != "/products" {
			t.Errorf("StartPath = %q, want /products", cfg.Browse.StartPath)
		}
	})

	t.Run("source uses the API when configured", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Browse.APIURL = "http://api.test"

		src, err := (&BrowseCmd{}).source(&cfg)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := src.(*fetch.HTTPSource); !ok {
			t.Errorf("source = %T, want *fetch.HTTPSource", src)
		}
	})

	t.Run("source falls back to the embedded catalog", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg := config.DefaultConfig()

		src, err := (&BrowseCmd{}).source(&cfg)
		if err != nil {
			t.Fatal(err)
		}
		cat, ok := src.(*catalog.Catalog)
		if !ok {
			t.Fatalf("source = %T, want *catalog.Catalog", src)
		}
		if cat.Len() == 0 {
			t.Error("embedded catalog should not be empty")
		}
	})
}

func TestFeature_ProductsCommand(t *testing.T) {
	cat := catalog.New([]catalog.Product{
		{ID: 1, Name: "Wireless Mouse", OriginalPrice: 599, SalePrice: 399, Rating: 4.6, ReviewCount: 2315},
		{ID: 7, Name: "Mechanical Keyboard", OriginalPrice: 1899, SalePrice: 1299, Rating: 4.7, ReviewCount: 88},
	})

	t.Run("lists every product", func(t *testing.T) {
		// Given a products command without a search
		var buf bytes.Buffer
		cmd := &ProductsCmd{}

		// When run against the catalog
		if err := cmd.run(context.Background(), &buf, cat); err != nil {
			t.Fatal(err)
		}

		// Then each product is printed with formatted prices and a total
		out := buf.String()
		for _, want := range []string{"Wireless Mouse", "$399 (was $599)", "(2.3K reviews)", "$1,299 (was $1,899)", "2 products"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("filters by search", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := &ProductsCmd{Search: "keyboard"}

		if err := cmd.run(context.Background(), &buf, cat); err != nil {
			t.Fatal(err)
		}

		out := buf.String()
		if strings.Contains(out, "Wireless Mouse") {
			t.Errorf("output should not contain Wireless Mouse:\n%s", out)
		}
		if !strings.Contains(out, "1 products") {
			t.Errorf("output should report 1 product:\n%s", out)
		}
	})

	t.Run("reports no matches", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := &ProductsCmd{Search: "toaster"}

		if err := cmd.run(context.Background(), &buf, cat); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `No products matching "toaster"`) {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("propagates source errors", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := (&ProductsCmd{}).run(ctx, &bytes.Buffer{}, cat)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if !strings.HasPrefix(err.Error(), "products: ") {
			t.Errorf("err = %q, want products: prefix", err)
		}
	})
}

func TestFeature_ServeCommand(t *testing.T) {
	t.Run("stops cleanly when the context ends", func(t *testing.T) {
		// Given an already cancelled context and a free port
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := config.DefaultConfig()
		cfg.Server.Listen = "127.0.0.1:0"
		cfg.Server.Latency = 0

		// When the server runs
		err := (&ServeCmd{}).run(ctx, &cfg, catalog.New(nil), slog.New(slog.DiscardHandler))

		// Then it shuts down without error
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("reports listen failures", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Server.Listen = "not-an-address"

		err := (&ServeCmd{}).run(context.Background(), &cfg, catalog.New(nil), slog.New(slog.DiscardHandler))

		if err == nil || !strings.HasPrefix(err.Error(), "serve: ") {
			t.Errorf("err = %v, want serve: listen error", err)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, k := range []string{"SHELF_LISTEN", "SHELF_API_URL", "SHELF_LOG_LEVEL", "SHELF_STALE_TIME"} {
			t.Setenv(k, "")
		}
	}

	t.Run("project config overrides user config", func(t *testing.T) {
		// Given user and project config files
		clearEnv(t)
		home := t.TempDir()
		t.Setenv("HOME", home)
		writeFile(t, filepath.Join(home, ".config", "shelf", "config.yaml"),
			"browse:\n  start_path: /\nserver:\n  listen: \":7000\"\n")
		project := t.TempDir()
		t.Chdir(project)
		writeFile(t, filepath.Join(project, ".shelf", "config.yaml"),
			"server:\n  listen: \":9000\"\n")

		// When loaded
		cfg, err := loadConfig()
		if err != nil {
			t.Fatal(err)
		}

		// Then the project layer wins and untouched user values survive
		if cfg.Server.Listen != ":9000" {
			t.Errorf("Listen = %q, want :9000", cfg.Server.Listen)
		}
		if cfg.Browse.StartPath != "/" {
			t.Errorf("StartPath = %q, want /", cfg.Browse.StartPath)
		}
	})

	t.Run("environment overrides files", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HOME", t.TempDir())
		t.Chdir(t.TempDir())
		t.Setenv("SHELF_LOG_LEVEL", "debug")

		cfg, err := loadConfig()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Level = %q, want debug", cfg.Log.Level)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HOME", t.TempDir())
		t.Chdir(t.TempDir())
		t.Setenv("SHELF_LOG_LEVEL", "loud")

		if _, err := loadConfig(); err == nil || !strings.Contains(err.Error(), "log.level") {
			t.Errorf("err = %v, want log.level validation error", err)
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"plain error", errors.New("boom"), exitFailure},
		{"setup error", setup(errors.New("bad config")), exitSetup},
		{"wrapped setup error", fmt.Errorf("outer: %w", setup(errors.New("bad config"))), exitSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// mockTeaRunner stubs tea program execution for BrowseCmd testing.
type mockTeaRunner struct {
	ran bool
	err error
}

func (m *mockTeaRunner) Run() (tea.Model, error) {
	m.ran = true
	return nil, m.err
}

// Compile-time check: mockTeaRunner satisfies teaRunner.
var _ teaRunner = (*mockTeaRunner)(nil)
