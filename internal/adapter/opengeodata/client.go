// Package opengeodata downloads Unfallatlas zip archives from
// opengeodata.nrw.de with bounded retries and atomic writes.
package opengeodata

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/unfallatlas/accident-data-etl/internal/domain"
	"github.com/unfallatlas/accident-data-etl/internal/observability"
)

// Client fetches year archives over HTTP. It implements pipeline.Downloader.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	maxBackoff time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a download client. timeout bounds each attempt; retries
// is the number of repeat attempts after the first failure.
func NewClient(baseURL string, timeout time.Duration, retries int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/") + "/",
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
	}
}

// Download ensures the year's archive exists at dest. If dest is already
// present no network access occurs. Otherwise the archive is fetched with
// exponential backoff between attempts, written to a temp file, verified to
// be a readable non-empty zip, and renamed into place so a reader never
// observes a partial archive.
func (c *Client) Download(ctx context.Context, year int, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		c.logger.Debug("archive already present", "year", year, "path", dest)
		return nil
	}

	url := c.baseURL + domain.DatasetFilename(year)
	backoff := c.backoff

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.metrics.DownloadRetries.Inc()
			if !c.sleep(ctx, backoff) {
				lastErr = ctx.Err()
				break
			}
			backoff = nextBackoff(backoff, c.maxBackoff)
		}

		attempts++
		err := c.fetchOnce(ctx, url, dest)
		if err == nil {
			c.metrics.DownloadAttempts.WithLabelValues("success").Inc()
			c.logger.Info("archive downloaded", "year", year, "url", url, "attempt", attempts)
			return nil
		}

		c.metrics.DownloadAttempts.WithLabelValues("error").Inc()
		c.logger.Warn("download attempt failed", "year", year, "url", url, "attempt", attempts, "error", err)
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return &domain.AcquisitionError{Year: year, URL: url, Attempts: attempts, Err: lastErr}
}

// fetchOnce performs one GET and atomically writes the verified result.
func (c *Client) fetchOnce(ctx context.Context, url, dest string) error {
	start := c.clock.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	if err := verifyZip(tmp.Name()); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move archive into place: %w", err)
	}

	c.metrics.DownloadDuration.Observe(c.clock.Since(start).Seconds())
	c.metrics.DownloadBytes.Observe(float64(written))
	return nil
}

// verifyZip rejects empty or unreadable archives before they are declared
// downloaded, so a truncated transfer never poisons the cache.
func verifyZip(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("verify archive: %w", err)
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		return fmt.Errorf("verify archive: zip contains no files")
	}
	return nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(d):
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
