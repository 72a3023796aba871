package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runner triggers one generation run and reports rows per table.
type Runner interface {
	Trigger(ctx context.Context) (domain.RunInfo, map[string]int, error)
}

// Server exposes health, readiness, metrics, and on-demand run endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// POST /runs routes. runner may be nil, in which case /runs is not mounted.
func NewServer(addr string, ready sharedobs.ReadinessChecker, runner Runner, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if runner != nil {
		mux.HandleFunc("POST /runs", s.handleRun(runner))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
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

type runResponse struct {
	RunID       string         `json:"run_id"`
	Stage       string         `json:"stage"`
	GeneratedAt string         `json:"generated_at"`
	Rows        map[string]int `json:"rows"`
}

// handleRun blocks until the run finishes; runs are serialized by the
// pipeline, so a request made during a scheduled run waits for it. The run
// is detached from the request and completes even if the client goes away.
func (s *Server) handleRun(runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, rows, err := runner.Trigger(context.WithoutCancel(r.Context()))
		if err != nil {
			s.logger.Error("on-demand run failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status": "failed",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, runResponse{
			RunID:       run.ID,
			Stage:       run.Stage,
			GeneratedAt: run.GeneratedAt.Format(time.RFC3339),
			Rows:        rows,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
