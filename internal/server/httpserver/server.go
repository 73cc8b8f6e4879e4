// Package httpserver serves the operational HTTP endpoints: liveness,
// readiness and Prometheus metrics.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/dmitrijs2005/cabinetmap/internal/server/metrics"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 5 * time.Second

// Pinger reports whether a dependency (the database) is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	address string
	db      Pinger
	metrics *metrics.Metrics
	logger  logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, db Pinger, m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		address: a,
		db:      db,
		metrics: m,
		logger:  l.With("module", "http_server"),
	}
}

// Router returns the chi router with all routes registered.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.observe)

	r.Get("/health/live", s.live)
	r.Get("/health/ready", s.ready)
	r.Handle("/metrics", s.metrics.Handler())

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *HTTPServer) live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) ready(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.logger.Warn(r.Context(), "Readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusWriter captures the response code for metrics.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(sw, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unknown"
		}
		s.metrics.ObserveHTTP(r.Method, path, strconv.Itoa(sw.code), time.Since(start))
	})
}
