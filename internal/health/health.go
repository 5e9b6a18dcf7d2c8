// Package health serves the liveness, health and metrics endpoints.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LivenessText is the body of GET /.
const LivenessText = "Contest reminder bot is running"

// StatusSource reports the latest scheduled run.
type StatusSource interface {
	LastCheck() (time.Time, bool)
}

// Response is the body of GET /health.
type Response struct {
	Status             string  `json:"status"`
	Uptime             float64 `json:"uptime"`
	Timestamp          string  `json:"timestamp"`
	LastScheduledCheck *string `json:"lastScheduledCheck"`
}

// Server is the inbound HTTP listener.
type Server struct {
	server          *http.Server
	state           StatusSource
	startedAt       time.Time
	shutdownTimeout time.Duration
	now             func() time.Time
	log             *slog.Logger
}

// NewServer creates a server listening on addr. state may be nil.
func NewServer(addr string, shutdownTimeout time.Duration, state StatusSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	s := &Server{
		state:           state,
		startedAt:       time.Now(),
		shutdownTimeout: shutdownTimeout,
		now:             time.Now,
		log:             logger.With("component", "health_server"),
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleLiveness)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(LivenessText))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	resp := Response{
		Status:    "ok",
		Uptime:    now.Sub(s.startedAt).Seconds(),
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if s.state != nil {
		if t, ok := s.state.LastCheck(); ok {
			formatted := t.UTC().Format(time.RFC3339)
			resp.LastScheduledCheck = &formatted
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to encode health response", "error", err)
	}
}

// Run serves until ctx is cancelled, then shuts down within the grace
// period. A listener that fails to start is returned as an error.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("health server listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Health server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Health server shutdown initiated", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Health server graceful shutdown failed, closing", "error", err)
		_ = s.server.Close()
		return fmt.Errorf("health server shutdown: %w", err)
	}
	s.log.Info("Health server stopped")
	return nil
}
