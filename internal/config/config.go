package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Unfallatlas download location.
const DefaultBaseURL = "https://www.opengeodata.nrw.de/produkte/transport_verkehr/unfallatlas/"

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir  string
	BaseURL  string
	HTTPAddr string

	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration

	DownloadTimeout time.Duration
	DownloadRetries int
	FetchWorkers    int
}

// Load reads configuration from environment variables, applying defaults
// where unset and validating eagerly so misconfiguration fails at startup.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	downloadTimeout, err := envDuration("DOWNLOAD_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	retries, err := envIntInRange("DOWNLOAD_RETRIES", 3, 1, 10)
	if err != nil {
		return nil, err
	}

	workers, err := envIntInRange("FETCH_WORKERS", 3, 1, 16)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         envOrDefault("DATA_DIR", "data"),
		BaseURL:         envOrDefault("BASE_URL", DefaultBaseURL),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		DownloadTimeout: downloadTimeout,
		DownloadRetries: retries,
		FetchWorkers:    workers,
	}

	if cfg.DataDir == "" {
		return nil, fmt.Errorf("DATA_DIR must not be empty")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BASE_URL must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func envIntInRange(key string, fallback, min, max int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("invalid %s: %q (must be %d-%d)", key, v, min, max)
	}
	return n, nil
}
