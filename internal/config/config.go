// Package config loads and saves the realtyai TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all realtyai configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Source     SourceConfig     `toml:"source"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Predict    PredictConfig    `toml:"predict"`
	Log        LogConfig        `toml:"log"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// APIConfig holds prediction service settings.
type APIConfig struct {
	BaseURL           string   `toml:"base_url"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second,omitempty"`
	Burst             int      `toml:"burst,omitempty"`
}

// SourceConfig picks where forecasts come from.
type SourceConfig struct {
	// Kind is "http" for the live service or "synthetic" for generated data.
	Kind string `toml:"kind"`
	Seed int64  `toml:"seed,omitempty"`
	// RegionsTTL is how long a fetched region catalog is reused.
	RegionsTTL Duration `toml:"regions_ttl"`
}

// ForecastConfig holds forecasting defaults.
type ForecastConfig struct {
	DefaultHorizon   int     `toml:"default_horizon"`
	DefaultMode      string  `toml:"default_mode"`
	TrendPositivePct float64 `toml:"trend_positive_pct"`
	TrendNegativePct float64 `toml:"trend_negative_pct"`
	MaxConcurrency   int     `toml:"max_concurrency"`
	SmoothingWindow  int     `toml:"smoothing_window"`
}

// PredictConfig holds price prediction defaults.
type PredictConfig struct {
	DefaultPricePerSqft float64 `toml:"default_price_per_sqft"`
	USDToINR            float64 `toml:"usd_to_inr"`
	HistoryLimit        int     `toml:"history_limit"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// File receives logs while the TUI owns the terminal.
	File string `toml:"file,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// Duration is a time.Duration that reads and writes as a string like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: Duration{30 * time.Second},
		},
		Source: SourceConfig{
			Kind:       "http",
			RegionsTTL: Duration{24 * time.Hour},
		},
		Forecast: ForecastConfig{
			DefaultHorizon:   12,
			DefaultMode:      "single",
			TrendPositivePct: 5,
			TrendNegativePct: -5,
			MaxConcurrency:   4,
			SmoothingWindow:  6,
		},
		Predict: PredictConfig{
			DefaultPricePerSqft: 5000,
			USDToINR:            80,
			HistoryLimit:        20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Forecast.DefaultHorizon < 1 || c.Forecast.DefaultHorizon > 36:
		return fmt.Errorf("forecast.default_horizon must be between 1 and 36, got %d", c.Forecast.DefaultHorizon)
	case c.Forecast.TrendNegativePct > c.Forecast.TrendPositivePct:
		return fmt.Errorf("forecast.trend_negative_pct (%g) is above trend_positive_pct (%g)",
			c.Forecast.TrendNegativePct, c.Forecast.TrendPositivePct)
	case c.API.Timeout.Duration < 0:
		return fmt.Errorf("api.timeout cannot be negative")
	case c.API.RequestsPerSecond < 0:
		return fmt.Errorf("api.requests_per_second cannot be negative")
	}
	return nil
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "realtyai")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "realtyai")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CacheDir returns the XDG-compliant cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "realtyai")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "realtyai")
}

// DBPath returns the path of the local SQLite store.
func DBPath() string {
	return filepath.Join(CacheDir(), "realtyai.db")
}

// LogPath returns the TUI log file from config, or the default under CacheDir.
func LogPath(cfg Config) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return filepath.Join(CacheDir(), "realtyai.log")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads the config at path, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetAPIURL returns the service URL from env var or config, in that order.
func GetAPIURL(cfg Config) string {
	if u := os.Getenv("REALTYAI_API_URL"); u != "" {
		return u
	}
	return cfg.API.BaseURL
}

// GetSourceKind returns the data source from env var or config, in that order.
func GetSourceKind(cfg Config) string {
	if k := os.Getenv("REALTYAI_SOURCE"); k != "" {
		return k
	}
	return cfg.Source.Kind
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
