// Package config loads and validates the exchange configuration from YAML.
// Absent fields fall back to defaults that run a single-node in-memory
// exchange, so an empty file is a valid configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the complete exchange configuration.
type Config struct {
	Platform PlatformConfig `yaml:"platform"`
	NATS     NATSConfig     `yaml:"nats"`
	Store    StoreConfig    `yaml:"store"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// PlatformConfig identifies this exchange node.
type PlatformConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

// NATSConfig holds the event stream connection settings.
type NATSConfig struct {
	URL           string        `yaml:"url"`
	Stream        string        `yaml:"stream"`
	Durable       string        `yaml:"durable"`
	Subject       string        `yaml:"subject"`
	MaxReconnects int           `yaml:"max_reconnects"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
	AckWait       time.Duration `yaml:"ack_wait"`
}

// StoreConfig selects the graph store backend. Path is used only by the
// sqlite backend; ":memory:" keeps sqlite ephemeral.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// MetricsConfig controls the Prometheus scrape listener. An empty address
// disables the listener.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given: in-memory
// store, local NATS, JSON logs at info level.
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{Name: "semexchange", Environment: "development"},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			Stream:        "EXCHANGE_EVENTS",
			Durable:       "semexchange-projector",
			Subject:       "exchange.events.>",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			AckWait:       30 * time.Second,
		},
		Store:   StoreConfig{Backend: BackendMemory},
		Metrics: MetricsConfig{Addr: ":9090"},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML configuration file, applies defaults for absent fields
// and validates the result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the runtime cannot start
// with. It collects nothing; the first problem is returned.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store: sqlite backend requires a path")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats: url is required")
	}
	if c.NATS.Stream == "" {
		return fmt.Errorf("nats: stream is required")
	}
	if c.NATS.Durable == "" {
		return fmt.Errorf("nats: durable name is required")
	}
	if c.NATS.Subject == "" {
		return fmt.Errorf("nats: subject is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log: unknown format %q", c.Log.Format)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// SafeConfig provides thread-safe access to a configuration that may be
// replaced at runtime.
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig wraps cfg; nil gets the defaults.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a copy of the current configuration.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validating it.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
