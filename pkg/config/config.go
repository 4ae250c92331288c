// Package config provides configuration for the arbitrage detector
// binaries: defaults, YAML/JSON file loading, and environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/logger"
)

// Config is the complete configuration for all binaries. Each binary uses
// the sections relevant to it.
type Config struct {
	Log      logger.Config    `yaml:"log" json:"log"`
	Detector DetectorSettings `yaml:"detector" json:"detector"`
	Rates    RatesSettings    `yaml:"rates" json:"rates"`
	Watch    WatchSettings    `yaml:"watch" json:"watch"`
	Feeds    []FeedSettings   `yaml:"feeds" json:"feeds"`
	Server   ServerSettings   `yaml:"server" json:"server"`
	Store    StoreSettings    `yaml:"store" json:"store"`
}

// DetectorSettings configures the detection engine.
type DetectorSettings struct {
	Algorithm    string `yaml:"algorithm" json:"algorithm"` // bellman-ford or spfa
	MinProfitBps int    `yaml:"min_profit_bps" json:"min_profit_bps"`
}

// RatesSettings configures the spot-rates API source.
type RatesSettings struct {
	URL            string  `yaml:"url" json:"url"`
	Base           string  `yaml:"base" json:"base"`
	RequestsPerSec float64 `yaml:"requests_per_sec" json:"requests_per_sec"`
	Fee            float64 `yaml:"fee" json:"fee"`
}

// WatchSettings configures the live detection loop.
type WatchSettings struct {
	IntervalMs int `yaml:"interval_ms" json:"interval_ms"`
}

// Interval returns the detection interval as a duration.
func (w WatchSettings) Interval() time.Duration {
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// FeedSettings configures one live exchange feed.
type FeedSettings struct {
	Exchange string   `yaml:"exchange" json:"exchange"`
	Pairs    []string `yaml:"pairs" json:"pairs"`
	Enabled  bool     `yaml:"enabled" json:"enabled"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr        string `yaml:"addr" json:"addr"`
	HistorySize int    `yaml:"history_size" json:"history_size"`
}

// StoreSettings configures optional MySQL persistence of opportunities.
type StoreSettings struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Addr     string `yaml:"addr" json:"addr"`
	Schema   string `yaml:"schema" json:"schema"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: logger.Config{
			Level:  "info",
			Format: "text",
		},
		Detector: DetectorSettings{
			Algorithm:    "bellman-ford",
			MinProfitBps: 0,
		},
		Rates: RatesSettings{
			Base:           "USD",
			RequestsPerSec: 1,
		},
		Watch: WatchSettings{
			IntervalMs: 5000,
		},
		Feeds: []FeedSettings{
			{Exchange: "binance", Pairs: []string{"BTC/USDT", "ETH/USDT", "ETH/BTC"}, Enabled: true},
			{Exchange: "coinbase", Pairs: []string{"BTC/USD", "ETH/USD", "ETH/BTC"}, Enabled: false},
		},
		Server: ServerSettings{
			Addr:        ":8080",
			HistorySize: 1000,
		},
		Store: StoreSettings{
			Enabled: false,
			Addr:    "127.0.0.1:3306",
			Schema:  "arbitrage",
		},
	}
}

// Load reads configuration from a file, dispatching on extension (.yml
// and .yaml parse as YAML, anything else as JSON), then applies
// environment overrides. An empty path returns defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yml", ".yaml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("cannot parse YAML config: %w", err)
			}
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("cannot parse JSON config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ARB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ARB_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("ARB_ALGORITHM"); v != "" {
		c.Detector.Algorithm = v
	}
	if v := os.Getenv("ARB_MIN_PROFIT_BPS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			c.Detector.MinProfitBps = val
		}
	}
	if v := os.Getenv("ARB_RATES_URL"); v != "" {
		c.Rates.URL = v
	}
	if v := os.Getenv("ARB_RATES_BASE"); v != "" {
		c.Rates.Base = v
	}
	if v := os.Getenv("ARB_WATCH_INTERVAL_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			c.Watch.IntervalMs = val
		}
	}
	if v := os.Getenv("ARB_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ARB_STORE_USER"); v != "" {
		c.Store.User = v
	}
	if v := os.Getenv("ARB_STORE_PASSWORD"); v != "" {
		c.Store.Password = v
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.Detector.Algorithm {
	case "bellman-ford", "spfa":
	default:
		return fmt.Errorf("detector.algorithm must be bellman-ford or spfa, got %q", c.Detector.Algorithm)
	}
	if c.Detector.MinProfitBps < 0 {
		return fmt.Errorf("detector.min_profit_bps cannot be negative")
	}
	if c.Rates.Fee < 0 || c.Rates.Fee >= 1 {
		return fmt.Errorf("rates.fee must be in [0, 1)")
	}
	if c.Watch.IntervalMs < 100 {
		return fmt.Errorf("watch.interval_ms must be at least 100")
	}
	if c.Server.HistorySize < 0 {
		return fmt.Errorf("server.history_size cannot be negative")
	}
	if c.Store.Enabled && (c.Store.Addr == "" || c.Store.Schema == "") {
		return fmt.Errorf("store.addr and store.schema are required when the store is enabled")
	}
	return nil
}

// EnabledFeeds returns only the enabled feed entries.
func (c *Config) EnabledFeeds() []FeedSettings {
	var enabled []FeedSettings
	for _, f := range c.Feeds {
		if f.Enabled {
			enabled = append(enabled, f)
		}
	}
	return enabled
}
