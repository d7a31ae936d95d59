package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/enricher/internal/enrich"
	"github.com/vietddude/enricher/internal/infra/storage/postgres"
)

// Server provides HTTP endpoints for health monitoring in daemon mode.
type Server struct {
	db     *postgres.DB
	server *http.Server

	mu        sync.RWMutex
	lastRun   *enrich.Report
	lastRunAt time.Time
	lastErr   error
}

// NewServer creates a new health server.
func NewServer(db *postgres.DB, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		db: db,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// RecordRun stores the outcome of the latest enrichment run for reporting.
func (s *Server) RecordRun(report *enrich.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = report
	s.lastRunAt = time.Now()
	s.lastErr = err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK

	if err := s.db.Health(r.Context()); err != nil {
		status = "critical"
		httpStatus = http.StatusServiceUnavailable
	}

	s.mu.RLock()
	response := map[string]any{
		"status": status,
	}
	if !s.lastRunAt.IsZero() {
		response["last_run_at"] = s.lastRunAt.Format(time.RFC3339)
		if s.lastErr != nil {
			response["last_run_error"] = s.lastErr.Error()
		} else if s.lastRun != nil {
			response["last_run"] = s.lastRun
		}
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}
