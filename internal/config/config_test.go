package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://disclosure.edinet-fsa.go.jp/api/v2", cfg.EDINET.BaseURL)
	assert.InDelta(t, 1.0, cfg.EDINET.RequestsPerSecond, 0.001)
	assert.Equal(t, 3, cfg.EDINET.MaxRetries)
	assert.Equal(t, 60, cfg.EDINET.TimeoutSecs)
	assert.Equal(t, "edinet-cli/1.0", cfg.EDINET.UserAgent)
	assert.Equal(t, "json", cfg.Store.Driver)
	assert.Equal(t, "output", cfg.Store.OutputDir)
	assert.Equal(t, "edinet.db", cfg.Store.SQLitePath)
	assert.Equal(t, 4, cfg.Fetch.Concurrency)
	assert.Empty(t, cfg.Resolver.OverridesPath)
	assert.Empty(t, cfg.Exchange.SpreadsheetPath)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /tmp/kessan.db
log:
  level: debug
  format: console
fetch:
  concurrency: 8
resolver:
  overrides_path: overrides.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".edinet-cli.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/kessan.db", cfg.Store.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, "overrides.yaml", cfg.Resolver.OverridesPath)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.EDINET.MaxRetries)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  concurrency: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Fetch.Concurrency)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".edinet-cli.yaml"), []byte(yaml), 0o644))

	t.Setenv("EDINET_STORE_DRIVER", "postgres")
	t.Setenv("EDINET_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadAPIKeyShortEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("EDINET_API_KEY", "key-from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "key-from-env", cfg.EDINET.APIKey)
}

func validFetchConfig() *Config {
	cfg := &Config{}
	cfg.EDINET.APIKey = "test-key"
	cfg.Store.Driver = "json"
	cfg.Store.OutputDir = "output"
	cfg.Fetch.Concurrency = 4
	return cfg
}

func TestValidateFetch_AllPresent(t *testing.T) {
	assert.NoError(t, validFetchConfig().Validate("fetch"))
}

func TestValidateFetch_MissingKey(t *testing.T) {
	cfg := validFetchConfig()
	cfg.EDINET.APIKey = ""

	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edinet.api_key is required")
}

func TestValidateFetch_ConcurrencyBounds(t *testing.T) {
	cfg := validFetchConfig()

	cfg.Fetch.Concurrency = 0
	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.concurrency must be between 1 and 32")

	cfg.Fetch.Concurrency = 33
	require.Error(t, cfg.Validate("fetch"))

	cfg.Fetch.Concurrency = 32
	assert.NoError(t, cfg.Validate("fetch"))
}

func TestValidateStoreDrivers(t *testing.T) {
	cfg := validFetchConfig()

	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = ""
	err := cfg.Validate("parse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.sqlite_path is required")

	cfg.Store.SQLitePath = "edinet.db"
	assert.NoError(t, cfg.Validate("parse"))

	cfg.Store.Driver = "postgres"
	err = cfg.Validate("parse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.Driver = "csv"
	err = cfg.Validate("parse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be json, sqlite, or postgres")
}

func TestValidateInspectNeedsNothing(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate("inspect"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := (&Config{}).Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerEmptyLevel(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Format: "json"}))
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}
