package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Forecast.DefaultHorizon != 12 {
		t.Errorf("horizon = %d, want 12", cfg.Forecast.DefaultHorizon)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://forecast.internal:9000"
	cfg.API.Timeout = Duration{5 * time.Second}
	cfg.Forecast.TrendPositivePct = 3

	if err := SaveFile(path, cfg); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `timeout = "5s"`) {
		t.Errorf("timeout not written as a duration string:\n%s", data)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.API.BaseURL != cfg.API.BaseURL || got.API.Timeout.Duration != 5*time.Second {
		t.Errorf("api = %+v", got.API)
	}
	if got.Forecast.TrendPositivePct != 3 {
		t.Errorf("trend_positive_pct = %v", got.Forecast.TrendPositivePct)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[forecast]\ndefault_horizon = 48\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for horizon 48")
	}

	body = "[api]\ntimeout = \"soon\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error for bad duration")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("REALTYAI_API_URL", "http://env:1")
	t.Setenv("REALTYAI_SOURCE", "synthetic")
	if got := GetAPIURL(cfg); got != "http://env:1" {
		t.Errorf("GetAPIURL = %q", got)
	}
	if got := GetSourceKind(cfg); got != "synthetic" {
		t.Errorf("GetSourceKind = %q", got)
	}
}

func TestDirsHonorXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")
	if ConfigPath() != "/tmp/cfg/realtyai/config.toml" {
		t.Errorf("ConfigPath = %q", ConfigPath())
	}
	if DBPath() != "/tmp/cache/realtyai/realtyai.db" {
		t.Errorf("DBPath = %q", DBPath())
	}
}
