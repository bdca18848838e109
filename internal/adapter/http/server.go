// Package http exposes the admin endpoints of the acquisition service:
// liveness, readiness, per-year dataset status, and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unfallatlas/accident-data-etl/internal/domain"
)

// ReadinessChecker reports whether the acquisition batch has completed.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// DatasetCatalog reports which years already have a canonical CSV on disk.
type DatasetCatalog interface {
	IsMaterialized(year int) bool
}

// Server exposes health, readiness, and metrics HTTP endpoints while the
// acquisition batch runs.
type Server struct {
	httpServer *http.Server
	catalog    DatasetCatalog
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /years, and
// /metrics routes.
func NewServer(addr string, ready ReadinessChecker, catalog DatasetCatalog, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.HandleFunc("GET /years", s.handleYears)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("admin server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type yearStatus struct {
	Year         int  `json:"year"`
	Materialized bool `json:"materialized"`
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	years := domain.SupportedYears()
	statuses := make([]yearStatus, 0, len(years))
	for _, year := range years {
		statuses = append(statuses, yearStatus{
			Year:         year,
			Materialized: s.catalog.IsMaterialized(year),
		})
	}
	writeJSON(w, http.StatusOK, statuses)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
