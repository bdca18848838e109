package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, 3, cfg.DownloadRetries)
	assert.Equal(t, 3, cfg.FetchWorkers)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/unfallatlas")
	t.Setenv("BASE_URL", "http://mirror.example.com/unfallatlas/")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DOWNLOAD_TIMEOUT", "90s")
	t.Setenv("DOWNLOAD_RETRIES", "5")
	t.Setenv("FETCH_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/unfallatlas", cfg.DataDir)
	assert.Equal(t, "http://mirror.example.com/unfallatlas/", cfg.BaseURL)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 90*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, 5, cfg.DownloadRetries)
	assert.Equal(t, 8, cfg.FetchWorkers)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeDownloadTimeout(t *testing.T) {
	t.Setenv("DOWNLOAD_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_TIMEOUT")
}

func TestLoad_RetriesOutOfRange(t *testing.T) {
	t.Setenv("DOWNLOAD_RETRIES", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_RETRIES")
}

func TestLoad_TooManyWorkers(t *testing.T) {
	t.Setenv("FETCH_WORKERS", "99")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_WORKERS")
}
