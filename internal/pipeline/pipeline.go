// Package pipeline orchestrates the per-year acquisition batch: download,
// materialize, report. Years are independent, so the batch fans out over a
// bounded worker pool and one failing year never blocks the others.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/unfallatlas/accident-data-etl/internal/domain"
	"github.com/unfallatlas/accident-data-etl/internal/observability"
)

// Downloader ensures a year's archive exists at dest.
type Downloader interface {
	Download(ctx context.Context, year int, dest string) error
}

// Materializer turns a downloaded archive into the canonical per-year CSV.
type Materializer interface {
	Materialize(year int, archivePath string) error
}

// Catalog locates a year's files and reports whether it is already done.
type Catalog interface {
	IsMaterialized(year int) bool
	ArchivePath(year int) string
}

// Report aggregates the per-year outcomes of one acquisition batch.
type Report struct {
	Materialized []int
	Skipped      []int
	Failed       map[int]error
}

// OK reports whether every requested year either materialized or was already
// present.
func (r Report) OK() bool { return len(r.Failed) == 0 }

// Err summarizes the failed years, or returns nil when all succeeded.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	years := make([]int, 0, len(r.Failed))
	for y := range r.Failed {
		years = append(years, y)
	}
	sort.Ints(years)

	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprintf("%d: %v", y, r.Failed[y])
	}
	return fmt.Errorf("%d year(s) failed: %s", len(years), strings.Join(parts, "; "))
}

// Pipeline runs the acquisition batch.
type Pipeline struct {
	downloader   Downloader
	materializer Materializer
	catalog      Catalog
	logger       *slog.Logger
	metrics      *observability.Metrics
	workers      int
	done         atomic.Bool
}

// New creates a Pipeline with the given stages and observability. workers
// bounds the number of years acquired concurrently.
func New(d Downloader, m Materializer, c Catalog, logger *slog.Logger, metrics *observability.Metrics, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		downloader:   d,
		materializer: m,
		catalog:      c,
		logger:       logger,
		metrics:      metrics,
		workers:      workers,
	}
}

// CheckReadiness returns nil once an acquisition batch has completed, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.done.Load() {
		return errors.New("acquisition batch has not completed yet")
	}
	return nil
}

// Run acquires every requested year, isolating failures per year. The whole
// request is validated upfront; an unsupported year fails the batch before
// any work starts. Years whose canonical CSV already exists are skipped
// without network access.
func (p *Pipeline) Run(ctx context.Context, years []int) (Report, error) {
	if err := domain.ValidateYears(years); err != nil {
		return Report{}, err
	}

	p.logger.Info("acquisition batch started", "years", len(years), "workers", p.workers)
	p.metrics.AcquisitionActive.Set(1)
	defer p.metrics.AcquisitionActive.Set(0)

	report := Report{Failed: make(map[int]error)}
	var mu sync.Mutex

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := p.workers
	if workers > len(years) {
		workers = len(years)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for year := range jobs {
				outcome, err := p.processYear(ctx, year)
				mu.Lock()
				switch {
				case err != nil:
					report.Failed[year] = err
				case outcome == outcomeSkipped:
					report.Skipped = append(report.Skipped, year)
				default:
					report.Materialized = append(report.Materialized, year)
				}
				mu.Unlock()
			}
		}()
	}

	var unfed []int
feed:
	for i, year := range years {
		if ctx.Err() != nil {
			unfed = years[i:]
			break
		}
		select {
		case <-ctx.Done():
			unfed = years[i:]
			break feed
		case jobs <- year:
		}
	}
	close(jobs)
	wg.Wait()

	for _, year := range unfed {
		report.Failed[year] = ctx.Err()
	}

	sort.Ints(report.Materialized)
	sort.Ints(report.Skipped)
	p.done.Store(true)

	p.logger.Info("acquisition batch finished",
		"materialized", len(report.Materialized),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report, nil
}

type outcome int

const (
	outcomeMaterialized outcome = iota
	outcomeSkipped
)

// processYear runs the fetch-extract-relocate sequence for one year.
func (p *Pipeline) processYear(ctx context.Context, year int) (outcome, error) {
	if p.catalog.IsMaterialized(year) {
		p.logger.Info("year already materialized, skipping", "year", year)
		p.metrics.YearsSkipped.Inc()
		return outcomeSkipped, nil
	}

	archivePath := p.catalog.ArchivePath(year)

	if err := p.downloader.Download(ctx, year, archivePath); err != nil {
		p.logger.Error("download failed", "year", year, "error", err)
		p.metrics.YearFailures.WithLabelValues("download").Inc()
		return 0, err
	}

	if err := p.materializer.Materialize(year, archivePath); err != nil {
		p.logger.Error("materialization failed", "year", year, "error", err)
		p.metrics.YearFailures.WithLabelValues("materialize").Inc()
		return 0, err
	}

	p.metrics.YearsMaterialized.Inc()
	return outcomeMaterialized, nil
}
