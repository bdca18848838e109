// Command fetch runs the full acquisition batch: for every supported
// Unfallatlas year it downloads the zip archive, extracts it, and
// materializes the canonical {year}.csv in the data directory. Years already
// materialized are skipped without network access, so the command is safe to
// re-run.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unfallatlas/accident-data-etl/internal/adapter/archive"
	"github.com/unfallatlas/accident-data-etl/internal/adapter/csvstore"
	httpadapter "github.com/unfallatlas/accident-data-etl/internal/adapter/http"
	"github.com/unfallatlas/accident-data-etl/internal/adapter/opengeodata"
	"github.com/unfallatlas/accident-data-etl/internal/config"
	"github.com/unfallatlas/accident-data-etl/internal/domain"
	"github.com/unfallatlas/accident-data-etl/internal/observability"
	"github.com/unfallatlas/accident-data-etl/internal/pipeline"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	store := csvstore.New(cfg.DataDir, logger)
	downloader := opengeodata.NewClient(cfg.BaseURL, cfg.DownloadTimeout, cfg.DownloadRetries, logger, metrics)
	materializer := archive.NewMaterializer(cfg.DataDir, logger, metrics)

	p := pipeline.New(downloader, materializer, store, logger, metrics, cfg.FetchWorkers)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Admin endpoints stay up for the duration of the batch.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin server error", "error", err)
		}
	}()

	report, err := p.Run(ctx, domain.SupportedYears())
	if err != nil {
		logger.Error("acquisition batch rejected", "error", err)
		shutdown(srv, cfg, logger)
		os.Exit(1)
	}

	logger.Info("acquisition report",
		"materialized", report.Materialized,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
	)
	if reportErr := report.Err(); reportErr != nil {
		logger.Error("some years failed", "error", reportErr)
	}

	shutdown(srv, cfg, logger)

	if !report.OK() {
		os.Exit(1)
	}
}

func shutdown(srv *httpadapter.Server, cfg *config.Config, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown error", "error", err)
	}
}
