// Package config handles configuration loading for stockdash.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. STOCKDASH_API_PORT.
const EnvPrefix = "STOCKDASH"

// Config represents the complete application configuration.
type Config struct {
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Provider  ProviderConfig  `mapstructure:"provider"  yaml:"provider"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	Logo      LogoConfig      `mapstructure:"logo"      yaml:"logo"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// DashboardConfig holds page defaults.
type DashboardConfig struct {
	DefaultSymbol string `mapstructure:"default_symbol" yaml:"default_symbol"`
	DefaultPeriod string `mapstructure:"default_period" yaml:"default_period"` // "Quarterly" or "Annual"
	SummaryLimit  int    `mapstructure:"summary_limit"  yaml:"summary_limit"`  // characters before "…"
	MAWindow      int    `mapstructure:"ma_window"      yaml:"ma_window"`
}

// ProviderConfig holds upstream market data settings.
type ProviderConfig struct {
	BaseURL    string  `mapstructure:"base_url"    yaml:"base_url"`
	TimeoutSec int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	RateLimit  float64 `mapstructure:"rate_limit"  yaml:"rate_limit"` // requests per second
	UserAgent  string  `mapstructure:"user_agent"  yaml:"user_agent"`
	Range      string  `mapstructure:"range"       yaml:"range"`
	Interval   string  `mapstructure:"interval"    yaml:"interval"`
}

// Timeout returns the request timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

// CacheConfig holds memo cache settings.
type CacheConfig struct {
	FlushSchedule string `mapstructure:"flush_schedule" yaml:"flush_schedule"` // cron expression, empty = never
}

// LogoConfig holds company logo discovery settings.
type LogoConfig struct {
	Discover   bool `mapstructure:"discover"    yaml:"discover"`
	TimeoutSec int  `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// NewsConfig holds the optional headlines section settings.
type NewsConfig struct {
	Enabled bool   `mapstructure:"enabled"  yaml:"enabled"`
	Limit   int    `mapstructure:"limit"    yaml:"limit"`
	FeedURL string `mapstructure:"feed_url" yaml:"feed_url"` // %s is replaced by the symbol
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host          string   `mapstructure:"host"           yaml:"host"`
	Port          int      `mapstructure:"port"           yaml:"port"`
	CORSOrigins   []string `mapstructure:"cors_origins"   yaml:"cors_origins"`
	SessionCookie string   `mapstructure:"session_cookie" yaml:"session_cookie"`
}

// Addr returns host:port.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.stockdash/config.yaml (home directory)
//  3. /etc/stockdash/config.yaml (system)
//
// Environment variables override config file values.
// Format: STOCKDASH_<SECTION>_<KEY>, e.g., STOCKDASH_API_PORT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stockdash"))
	v.AddConfigPath("/etc/stockdash")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

// Validate checks values that would otherwise fail later at render time.
func (c *Config) Validate() error {
	if c.Dashboard.MAWindow < 1 {
		return fmt.Errorf("dashboard.ma_window must be positive, got %d", c.Dashboard.MAWindow)
	}
	if c.Dashboard.SummaryLimit < 1 {
		return fmt.Errorf("dashboard.summary_limit must be positive, got %d", c.Dashboard.SummaryLimit)
	}
	switch strings.ToLower(c.Dashboard.DefaultPeriod) {
	case "quarterly", "annual":
	default:
		return fmt.Errorf("dashboard.default_period must be Quarterly or Annual, got %q", c.Dashboard.DefaultPeriod)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	return nil
}

// YAML renders the effective configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Dashboard defaults
	v.SetDefault("dashboard.default_symbol", "AAPL")
	v.SetDefault("dashboard.default_period", "Quarterly")
	v.SetDefault("dashboard.summary_limit", 200)
	v.SetDefault("dashboard.ma_window", 50)

	// Provider defaults
	v.SetDefault("provider.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.timeout_sec", 30)
	v.SetDefault("provider.rate_limit", 5.0)
	v.SetDefault("provider.user_agent", "")
	v.SetDefault("provider.range", "1y")
	v.SetDefault("provider.interval", "1wk")

	// Cache defaults (no invalidation)
	v.SetDefault("cache.flush_schedule", "")

	// Logo defaults
	v.SetDefault("logo.discover", false)
	v.SetDefault("logo.timeout_sec", 5)

	// News defaults
	v.SetDefault("news.enabled", false)
	v.SetDefault("news.limit", 5)
	v.SetDefault("news.feed_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.session_cookie", "stockdash_session")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
