package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// acquisition pipeline.
type Metrics struct {
	YearsMaterialized prometheus.Counter
	YearsSkipped      prometheus.Counter
	YearFailures      *prometheus.CounterVec // labels: stage={download,materialize}
	AcquisitionActive prometheus.Gauge

	DownloadAttempts *prometheus.CounterVec // labels: outcome={success,error}
	DownloadRetries  prometheus.Counter
	DownloadDuration prometheus.Histogram
	DownloadBytes    prometheus.Histogram

	ArchivesExtracted prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		YearsMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "unfall_etl",
			Name:      "years_materialized_total",
			Help:      "Years whose canonical CSV was produced by this run.",
		}),
		YearsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "unfall_etl",
			Name:      "years_skipped_total",
			Help:      "Years already materialized and skipped without network access.",
		}),
		YearFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unfall_etl",
			Name:      "year_failures_total",
			Help:      "Per-year failures by pipeline stage.",
		}, []string{"stage"}),
		AcquisitionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "unfall_etl",
			Name:      "acquisition_active",
			Help:      "1 while the acquisition batch is running, 0 otherwise.",
		}),
		DownloadAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unfall_etl",
			Name:      "download_attempts_total",
			Help:      "Archive download attempts by outcome.",
		}, []string{"outcome"}),
		DownloadRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "unfall_etl",
			Name:      "download_retries_total",
			Help:      "Download attempts repeated after a failure.",
		}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "unfall_etl",
			Name:      "download_duration_seconds",
			Help:      "Duration of successful archive downloads.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		DownloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "unfall_etl",
			Name:      "download_bytes",
			Help:      "Size of downloaded archives in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		ArchivesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "unfall_etl",
			Name:      "archives_extracted_total",
			Help:      "Zip archives extracted into scratch directories.",
		}),
	}

	prometheus.MustRegister(
		m.YearsMaterialized,
		m.YearsSkipped,
		m.YearFailures,
		m.AcquisitionActive,
		m.DownloadAttempts,
		m.DownloadRetries,
		m.DownloadDuration,
		m.DownloadBytes,
		m.ArchivesExtracted,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		YearsMaterialized: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "unfall_etl", Name: "years_materialized_total"}),
		YearsSkipped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "unfall_etl", Name: "years_skipped_total"}),
		YearFailures:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "unfall_etl", Name: "year_failures_total"}, []string{"stage"}),
		AcquisitionActive: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "unfall_etl", Name: "acquisition_active"}),
		DownloadAttempts:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "unfall_etl", Name: "download_attempts_total"}, []string{"outcome"}),
		DownloadRetries:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "unfall_etl", Name: "download_retries_total"}),
		DownloadDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "unfall_etl", Name: "download_duration_seconds"}),
		DownloadBytes:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "unfall_etl", Name: "download_bytes"}),
		ArchivesExtracted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "unfall_etl", Name: "archives_extracted_total"}),
	}
}
