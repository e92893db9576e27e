package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the variables without which Load refuses to start.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COLIS_PRIVE_AUTH_URL", "https://auth.colisprive.test")
	t.Setenv("COLIS_PRIVE_TOURNEE_URL", "https://tournee.colisprive.test")
	t.Setenv("COLIS_PRIVE_DETAIL_URL", "https://detail.colisprive.test")
	t.Setenv("MAPBOX_TOKEN", "pk.test")
}

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	setRequiredEnv(t)

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)

	assert.Equal(t, 24, cfg.ColisPrive.TokenLifetimeHours)
	assert.Equal(t, 5, cfg.ColisPrive.DetailBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.ColisPrive.DetailBatchDelay)
	assert.Equal(t, 30*time.Second, cfg.ColisPrive.RequestTimeout)

	assert.Equal(t, "https://api.mapbox.com", cfg.Optimizer.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Optimizer.ServiceDuration)
	assert.Equal(t, 5*time.Second, cfg.Optimizer.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Optimizer.MaxWait)

	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.DetailTTL)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)

	assert.Equal(t, 90*time.Second, cfg.Pipeline.Timeout)
	assert.True(t, cfg.Pipeline.EnrichDetails)
	assert.False(t, cfg.Proxy.Enabled)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("COLIS_PRIVE_DETAIL_BATCH_SIZE", "3")
	t.Setenv("COLIS_PRIVE_DETAIL_BATCH_DELAY", "250ms")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("PIPELINE_ENRICH_DETAILS", "false")
	t.Setenv("PROXY_ENABLED", "true")
	t.Setenv("PROXY_HOSTNAME", "proxy.test")
	t.Setenv("PROXY_PORT", "3128")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "https://auth.colisprive.test", cfg.ColisPrive.AuthURL)
	assert.Equal(t, "pk.test", cfg.Optimizer.Token)
	assert.Equal(t, 3, cfg.ColisPrive.DetailBatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.ColisPrive.DetailBatchDelay)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis://cache:6379/2", cfg.Cache.RedisURL)
	assert.False(t, cfg.Pipeline.EnrichDetails)
	assert.True(t, cfg.Proxy.Enabled)
	assert.Equal(t, "proxy.test", cfg.Proxy.Hostname)
	assert.Equal(t, 3128, cfg.Proxy.Port)
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
COLIS_PRIVE_AUTH_URL=https://auth.staging.test
COLIS_PRIVE_TOURNEE_URL=https://tournee.staging.test
COLIS_PRIVE_DETAIL_URL=https://detail.staging.test
MAPBOX_TOKEN=pk.staging
OPTIMIZER_POLL_INTERVAL=2s
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "https://detail.staging.test", cfg.ColisPrive.DetailURL)
	assert.Equal(t, 2*time.Second, cfg.Optimizer.PollInterval)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	os.Unsetenv("COLIS_PRIVE_AUTH_URL")
	os.Unsetenv("COLIS_PRIVE_TOURNEE_URL")
	os.Unsetenv("COLIS_PRIVE_DETAIL_URL")
	os.Unsetenv("MAPBOX_TOKEN")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration")
}

// TestLoad_InvalidBackend verifies that an unknown cache backend is rejected.
func TestLoad_InvalidBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_BACKEND", "memcached")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "CACHE_BACKEND")
}

// TestLoad_InvalidBatchSize verifies that a non-positive batch size is rejected.
func TestLoad_InvalidBatchSize(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COLIS_PRIVE_DETAIL_BATCH_SIZE", "0")

	_, err := Load(".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COLIS_PRIVE_DETAIL_BATCH_SIZE")
}
