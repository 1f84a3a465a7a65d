// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all shelf configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Browse    Browse    `yaml:"browse"`
	KeepAlive KeepAlive `yaml:"keepalive"`
	Log       Log       `yaml:"log"`
	Catalog   Catalog   `yaml:"catalog"`
}

// Server holds mock product API settings.
type Server struct {
	Listen  string        `yaml:"listen"`
	Latency time.Duration `yaml:"latency"` // Simulated response delay
}

// Browse holds terminal browser settings.
type Browse struct {
	APIURL         string        `yaml:"api_url"` // Empty reads the catalog in-process
	StartPath      string        `yaml:"start_path"`
	StaleTime      time.Duration `yaml:"stale_time"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// KeepAlive holds the static route -> view name table.
type KeepAlive struct {
	Routes map[string]string `yaml:"routes"`
}

// Log holds logging settings.
type Log struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`  // Browse log destination; empty discards
}

// Catalog holds product feed settings.
type Catalog struct {
	File string `yaml:"file"` // Looked up in .shelf/ first, then the embedded data
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: Server{
			Listen:  ":8080",
			Latency: 200 * time.Millisecond,
		},
		Browse: Browse{
			StartPath:      "/products",
			StaleTime:      time.Minute,
			SearchDebounce: 500 * time.Millisecond,
			RequestTimeout: 5 * time.Second,
		},
		KeepAlive: KeepAlive{
			Routes: map[string]string{"/products": "ProductList"},
		},
		Log: Log{
			Level: "info",
		},
		Catalog: Catalog{
			File: "products.yaml",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return errors.New("config: server.listen cannot be empty")
	}
	if c.Server.Latency < 0 {
		return fmt.Errorf("config: server.latency must be non-negative, got %v", c.Server.Latency)
	}
	if c.Browse.APIURL != "" {
		u, err := url.Parse(c.Browse.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: browse.api_url must be an http(s) URL, got %q", c.Browse.APIURL)
		}
	}
	if !strings.HasPrefix(c.Browse.StartPath, "/") {
		return fmt.Errorf("config: browse.start_path must start with /, got %q", c.Browse.StartPath)
	}
	if c.Browse.StaleTime < 0 {
		return fmt.Errorf("config: browse.stale_time must be non-negative, got %v", c.Browse.StaleTime)
	}
	if c.Browse.SearchDebounce < 0 {
		return fmt.Errorf("config: browse.search_debounce must be non-negative, got %v", c.Browse.SearchDebounce)
	}
	if c.Browse.RequestTimeout <= 0 {
		return fmt.Errorf("config: browse.request_timeout must be positive, got %v", c.Browse.RequestTimeout)
	}
	names := make(map[string]string, len(c.KeepAlive.Routes))
	for path, name := range c.KeepAlive.Routes {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("config: keepalive.routes path must start with /, got %q", path)
		}
		if name == "" {
			return fmt.Errorf("config: keepalive.routes[%q] view name cannot be empty", path)
		}
		if other, dup := names[name]; dup {
			return fmt.Errorf("config: keepalive.routes view %q mapped from both %q and %q", name, other, path)
		}
		names[name] = path
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Catalog.File == "" {
		return errors.New("config: catalog.file cannot be empty")
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: SHELF_LISTEN, SHELF_API_URL, SHELF_LOG_LEVEL, SHELF_STALE_TIME.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("SHELF_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("SHELF_API_URL"); v != "" {
		c.Browse.APIURL = v
	}
	if v := os.Getenv("SHELF_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SHELF_STALE_TIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid SHELF_STALE_TIME %q: %w", v, err)
		}
		c.Browse.StaleTime = d
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Server    *rawServer    `yaml:"server"`
	Browse    *rawBrowse    `yaml:"browse"`
	KeepAlive *rawKeepAlive `yaml:"keepalive"`
	Log       *rawLog       `yaml:"log"`
	Catalog   *rawCatalog   `yaml:"catalog"`
}

type rawServer struct {
	Listen  *string        `yaml:"listen"`
	Latency *time.Duration `yaml:"latency"`
}

type rawBrowse struct {
	APIURL         *string        `yaml:"api_url"`
	StartPath      *string        `yaml:"start_path"`
	StaleTime      *time.Duration `yaml:"stale_time"`
	SearchDebounce *time.Duration `yaml:"search_debounce"`
	RequestTimeout *time.Duration `yaml:"request_timeout"`
}

type rawKeepAlive struct {
	Routes map[string]string `yaml:"routes"` // Replaces the whole table when set
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

type rawCatalog struct {
	File *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if s := layer.Server; s != nil {
		setIf(&c.Server.Listen, s.Listen)
		setIf(&c.Server.Latency, s.Latency)
	}
	if b := layer.Browse; b != nil {
		setIf(&c.Browse.APIURL, b.APIURL)
		setIf(&c.Browse.StartPath, b.StartPath)
		setIf(&c.Browse.StaleTime, b.StaleTime)
		setIf(&c.Browse.SearchDebounce, b.SearchDebounce)
		setIf(&c.Browse.RequestTimeout, b.RequestTimeout)
	}
	if k := layer.KeepAlive; k != nil && k.Routes != nil {
		routes := make(map[string]string, len(k.Routes))
		for path, name := range k.Routes {
			routes[path] = name
		}
		c.KeepAlive.Routes = routes
	}
	if l := layer.Log; l != nil {
		setIf(&c.Log.Level, l.Level)
		setIf(&c.Log.File, l.File)
	}
	if cat := layer.Catalog; cat != nil {
		setIf(&c.Catalog.File, cat.File)
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
