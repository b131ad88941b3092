// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	API         APIConfig       `toml:"api"`
	Session     SessionConfig   `toml:"session"`
	Cache       CacheConfig     `toml:"cache"`
	Logging     LoggingConfig   `toml:"logging"`
	Dashboard   DashboardConfig `toml:"dashboard"`
}

// APIConfig holds the remote portfolio service configuration
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`    // per-request bound, duration string
	RateLimit int    `toml:"rate_limit"` // requests per second, 0 disables limiting
}

// GetTimeout parses and returns the timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SessionConfig holds the bearer credential for the session.
type SessionConfig struct {
	Token string `toml:"token"`
}

// CacheConfig holds the stock directory cache configuration
type CacheConfig struct {
	TTL     string `toml:"ttl"`
	Cleanup string `toml:"cleanup"`
}

// GetTTL parses and returns the cache entry lifetime
func (c *CacheConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// GetCleanup parses and returns the expired-entry sweep interval
func (c *CacheConfig) GetCleanup() time.Duration {
	d, err := time.ParseDuration(c.Cleanup)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// DashboardConfig holds dashboard presentation settings
type DashboardConfig struct {
	RecentTransactions int `toml:"recent_transactions"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api",
			Timeout:   "30s",
			RateLimit: 10,
		},
		Cache: CacheConfig{
			TTL:     "5m",
			Cleanup: "10m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Dashboard: DashboardConfig{
			RecentTransactions: 5,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Dashboard.RecentTransactions <= 0 {
		config.Dashboard.RecentTransactions = 5
	}
	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if url := os.Getenv("FOLIO_API_URL"); url != "" {
		config.API.BaseURL = url
	}

	if timeout := os.Getenv("FOLIO_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}

	if rl := os.Getenv("FOLIO_RATE_LIMIT"); rl != "" {
		if n, err := strconv.Atoi(rl); err == nil {
			config.API.RateLimit = n
		}
	}

	if token := os.Getenv("FOLIO_TOKEN"); token != "" {
		config.Session.Token = token
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
