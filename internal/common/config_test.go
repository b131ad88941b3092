package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.API.GetTimeout() != 30*time.Second {
		t.Errorf("API timeout default = %v, want 30s", cfg.API.GetTimeout())
	}
	if cfg.Dashboard.RecentTransactions != 5 {
		t.Errorf("RecentTransactions default = %d, want 5", cfg.Dashboard.RecentTransactions)
	}
}

func TestConfig_TokenEnvOverride(t *testing.T) {
	t.Setenv("FOLIO_TOKEN", "from-env")
	t.Setenv("FOLIO_API_URL", "https://folio.example.com/api")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Session.Token != "from-env" {
		t.Errorf("Session.Token = %q, want %q", cfg.Session.Token, "from-env")
	}
	if cfg.API.BaseURL != "https://folio.example.com/api" {
		t.Errorf("API.BaseURL = %q after env override", cfg.API.BaseURL)
	}
}

func TestConfig_RateLimitEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("FOLIO_RATE_LIMIT", "lots")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 10, cfg.API.RateLimit)
}

func TestLoadConfig_MergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "folio.toml")
	local := filepath.Join(dir, "folio.local.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
[api]
base_url = "https://api.example.com/"
timeout = "5s"

[logging]
level = "debug"
`), 0o600))
	require.NoError(t, os.WriteFile(local, []byte(`
[api]
timeout = "12s"

[dashboard]
recent_transactions = 10
`), 0o600))

	cfg, err := LoadConfig(base, local, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 12*time.Second, cfg.API.GetTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Dashboard.RecentTransactions)
}

func TestLoadConfig_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\nbase_url = "), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestDurationFallbacks(t *testing.T) {
	api := APIConfig{Timeout: "soon"}
	assert.Equal(t, 30*time.Second, api.GetTimeout())

	cache := CacheConfig{TTL: "-1m", Cleanup: ""}
	assert.Equal(t, 5*time.Minute, cache.GetTTL())
	assert.Equal(t, 10*time.Minute, cache.GetCleanup())
}
