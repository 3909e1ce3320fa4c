// Package api serves babies, measurements and scans over HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/babyscan/babyscan/internal/scan"
	"github.com/babyscan/babyscan/internal/storage"
)

const (
	// maxJSONBodySize limits JSON request bodies.
	maxJSONBodySize = 1 << 20 // 1 MB

	// maxImageBodySize limits scan uploads.
	maxImageBodySize = 20 << 20 // 20 MB

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Registry receives the scan metrics and backs /metrics.
	// Nil creates a private registry with Go and process collectors.
	Registry *prometheus.Registry

	Logger *slog.Logger

	// Now is the clock for the dashboard. Defaults to time.Now.
	Now func() time.Time
}

// Server holds the HTTP handlers.
type Server struct {
	store    storage.Storage
	scanner  *scan.Service
	registry *prometheus.Registry
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer creates a Server over store and scanner.
func NewServer(store storage.Storage, scanner *scan.Service, opts Options) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	reg := opts.Registry
	if reg == nil {
		reg = newRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		store:    store,
		scanner:  scanner,
		registry: reg,
		metrics:  NewMetrics(reg),
		logger:   logger,
		now:      now,
	}, nil
}

// Handler returns the routed handler. Routes:
//
//	GET    /healthz
//	GET    /metrics
//	GET    /api/babies
//	POST   /api/babies
//	GET    /api/babies/{id}
//	PATCH  /api/babies/{id}
//	DELETE /api/babies/{id}
//	GET    /api/babies/{id}/measurements
//	POST   /api/babies/{id}/scan
//	GET    /api/babies/{id}/summary
//	GET    /api/measurements/{id}
//	PATCH  /api/measurements/{id}
//	DELETE /api/measurements/{id}
//	GET    /api/dashboard
//	GET    /api/export.csv
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/babies", s.handleListBabies)
	mux.HandleFunc("POST /api/babies", s.handleCreateBaby)
	mux.HandleFunc("GET /api/babies/{id}", s.handleGetBaby)
	mux.HandleFunc("PATCH /api/babies/{id}", s.handleUpdateBaby)
	mux.HandleFunc("DELETE /api/babies/{id}", s.handleDeleteBaby)
	mux.HandleFunc("GET /api/babies/{id}/measurements", s.handleListMeasurements)
	mux.HandleFunc("POST /api/babies/{id}/scan", s.handleScan)
	mux.HandleFunc("GET /api/babies/{id}/summary", s.handleSummary)

	mux.HandleFunc("GET /api/measurements/{id}", s.handleGetMeasurement)
	mux.HandleFunc("PATCH /api/measurements/{id}", s.handleUpdateMeasurement)
	mux.HandleFunc("DELETE /api/measurements/{id}", s.handleDeleteMeasurement)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/export.csv", s.handleExport)

	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Response is already partially written on error; nothing useful to do.
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}
