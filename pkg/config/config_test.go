package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromCreatesDefaults(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvPollInterval, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.Timeout())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadFromMergesDefaults(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvPollInterval, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://scraper:9000\"\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://scraper:9000", cfg.API.BaseURL)
	assert.Equal(t, 60, cfg.Polling.Interval)
	assert.Equal(t, "tmp", cfg.Log.Dir)
	assert.Equal(t, 8000, cfg.DevServer.Port)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(EnvBaseURL, "http://override:1234")
	t.Setenv(EnvPollInterval, "90s")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:1234", cfg.API.BaseURL)
	assert.Equal(t, 90, cfg.Polling.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv(EnvPollInterval, "soon")
	_, err = LoadFrom(path)
	assert.Error(t, err)
}

func TestConfigPathOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv(EnvConfigPath, want)

	got, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SCRAPER_TEST_ONLY_KEY=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SCRAPER_TEST_ONLY_KEY") })

	require.NoError(t, LoadEnv(envFile, true))
	assert.Equal(t, "from-file", os.Getenv("SCRAPER_TEST_ONLY_KEY"))

	missing := filepath.Join(dir, "missing.env")
	assert.NoError(t, LoadEnv(missing, false))
	assert.Error(t, LoadEnv(missing, true))
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("api.base_url", "http://example.com"))
	require.NoError(t, cfg.Set("polling.interval", "15"))
	require.NoError(t, cfg.Set("devserver.port", "9001"))
	require.NoError(t, cfg.Set("log.level", "warn"))
	assert.Equal(t, "http://example.com", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.Polling.Interval)
	assert.Equal(t, 9001, cfg.DevServer.Port)
	assert.Equal(t, "warn", cfg.Log.Level)

	assert.Error(t, cfg.Set("api", "x"))
	assert.Error(t, cfg.Set("api.unknown", "x"))
	assert.Error(t, cfg.Set("database.url", "x"))
	assert.Error(t, cfg.Set("polling.interval", "-3"))
	assert.Error(t, cfg.Set("devserver.port", "http"))
}

func TestSaveToRoundTrip(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvPollInterval, "")
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	require.NoError(t, cfg.Set("api.timeout", "5"))
	require.NoError(t, SaveTo(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, loaded.Timeout())
}
