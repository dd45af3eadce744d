package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Dashboard defaults
	if cfg.Dashboard.DefaultSymbol != "AAPL" {
		t.Errorf("Dashboard.DefaultSymbol: got %q, want %q", cfg.Dashboard.DefaultSymbol, "AAPL")
	}
	if cfg.Dashboard.DefaultPeriod != "Quarterly" {
		t.Errorf("Dashboard.DefaultPeriod: got %q, want %q", cfg.Dashboard.DefaultPeriod, "Quarterly")
	}
	if cfg.Dashboard.SummaryLimit != 200 {
		t.Errorf("Dashboard.SummaryLimit: got %d, want 200", cfg.Dashboard.SummaryLimit)
	}
	if cfg.Dashboard.MAWindow != 50 {
		t.Errorf("Dashboard.MAWindow: got %d, want 50", cfg.Dashboard.MAWindow)
	}

	// Provider defaults
	if cfg.Provider.BaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("Provider.BaseURL: got %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Timeout() != 30*time.Second {
		t.Errorf("Provider.Timeout: got %v, want 30s", cfg.Provider.Timeout())
	}
	if cfg.Provider.Range != "1y" || cfg.Provider.Interval != "1wk" {
		t.Errorf("Provider range/interval: got %q/%q, want 1y/1wk", cfg.Provider.Range, cfg.Provider.Interval)
	}

	// Cache: no invalidation by default
	if cfg.Cache.FlushSchedule != "" {
		t.Errorf("Cache.FlushSchedule: got %q, want empty", cfg.Cache.FlushSchedule)
	}

	// Optional sections are off
	if cfg.News.Enabled {
		t.Error("News.Enabled should be false by default")
	}
	if cfg.Logo.Discover {
		t.Error("Logo.Discover should be false by default")
	}
	if !strings.Contains(cfg.News.FeedURL, "%s") {
		t.Errorf("News.FeedURL should contain a symbol placeholder: %q", cfg.News.FeedURL)
	}

	// API defaults
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr: got %q, want %q", cfg.API.Addr(), "0.0.0.0:8080")
	}
	if cfg.API.SessionCookie != "stockdash_session" {
		t.Errorf("API.SessionCookie: got %q", cfg.API.SessionCookie)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
dashboard:
  default_symbol: "MSFT"
  default_period: "Annual"
  ma_window: 20
cache:
  flush_schedule: "@daily"
news:
  enabled: true
  limit: 3
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Dashboard.DefaultSymbol != "MSFT" {
		t.Errorf("Dashboard.DefaultSymbol: got %q, want %q", cfg.Dashboard.DefaultSymbol, "MSFT")
	}
	if cfg.Dashboard.DefaultPeriod != "Annual" {
		t.Errorf("Dashboard.DefaultPeriod: got %q, want %q", cfg.Dashboard.DefaultPeriod, "Annual")
	}
	if cfg.Dashboard.MAWindow != 20 {
		t.Errorf("Dashboard.MAWindow: got %d, want 20", cfg.Dashboard.MAWindow)
	}
	// Unset keys keep their defaults.
	if cfg.Dashboard.SummaryLimit != 200 {
		t.Errorf("Dashboard.SummaryLimit: got %d, want 200", cfg.Dashboard.SummaryLimit)
	}
	if cfg.Cache.FlushSchedule != "@daily" {
		t.Errorf("Cache.FlushSchedule: got %q", cfg.Cache.FlushSchedule)
	}
	if !cfg.News.Enabled || cfg.News.Limit != 3 {
		t.Errorf("News: got %+v", cfg.News)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("dashboard:\n  default_period: Monthly\n"), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	_, err := LoadFromFile(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "default_period") {
		t.Errorf("expected default_period validation error, got %v", err)
	}
}

// ── Environment ──

func TestEnvOverride(t *testing.T) {
	t.Setenv("STOCKDASH_API_PORT", "9191")
	t.Setenv("STOCKDASH_DASHBOARD_DEFAULT_SYMBOL", "NVDA")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port: got %d, want 9191", cfg.API.Port)
	}
	if cfg.Dashboard.DefaultSymbol != "NVDA" {
		t.Errorf("Dashboard.DefaultSymbol: got %q, want NVDA", cfg.Dashboard.DefaultSymbol)
	}
}

// ── Validate ──

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errHas string
	}{
		{"defaults ok", func(*Config) {}, ""},
		{"zero window", func(c *Config) { c.Dashboard.MAWindow = 0 }, "ma_window"},
		{"zero summary", func(c *Config) { c.Dashboard.SummaryLimit = 0 }, "summary_limit"},
		{"bad period", func(c *Config) { c.Dashboard.DefaultPeriod = "weekly" }, "default_period"},
		{"bad port", func(c *Config) { c.API.Port = 70000 }, "api.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errHas == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errHas) {
				t.Errorf("got %v, want error containing %q", err, tt.errHas)
			}
		})
	}
}

// ── YAML ──

func TestYAMLDump(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	out, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML() error: %v", err)
	}
	s := string(out)
	for _, want := range []string{"dashboard:", "default_symbol: AAPL", "ma_window: 50", "logging:"} {
		if !strings.Contains(s, want) {
			t.Errorf("YAML missing %q:\n%s", want, s)
		}
	}
}

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	if homeDir() == "" {
		t.Error("homeDir() returned empty string")
	}
}
