package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data", cfg.Ingest.DataDir)
	assert.Equal(t, "dados_", cfg.Ingest.FilePrefix)
	assert.Equal(t, 4, cfg.Ingest.Concurrency)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TXDASH_SERVER_PORT", "9090")
	t.Setenv("TXDASH_INGEST_DATA_DIR", "/var/data/clients")
	t.Setenv("TXDASH_INGEST_FILE_PREFIX", "client_")
	t.Setenv("TXDASH_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/data/clients", cfg.Ingest.DataDir)
	assert.Equal(t, "client_", cfg.Ingest.FilePrefix)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("TXDASH_SERVER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidateEmptyPrefix(t *testing.T) {
	cfg := Default()
	cfg.Ingest.FilePrefix = ""
	assert.Error(t, cfg.validate())
}

func TestValidateFixesConcurrency(t *testing.T) {
	cfg := Default()
	cfg.Ingest.Concurrency = 0
	require.NoError(t, cfg.validate())
	assert.Equal(t, 1, cfg.Ingest.Concurrency)
}
