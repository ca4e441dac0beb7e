package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"brainstorm-hq/easybackup/pkg/telemetry/health"
)

// Timeouts of the metrics endpoint.
const (
	serverReadTimeout     = 10 * time.Second
	serverWriteTimeout    = 30 * time.Second
	serverIdleTimeout     = 60 * time.Second
	serverShutdownTimeout = 5 * time.Second
)

// MetricsServer serves the metrics handler over HTTP.
type MetricsServer struct {
	httpServer   *http.Server
	listener     net.Listener
	logger       *slog.Logger
	shutdownOnce sync.Once
}

// NewMetricsServer creates a server exposing handler at path. When checker
// is set, /health and /ready are served as well.
func NewMetricsServer(addr, path string, handler http.Handler, checker *health.Checker, logger *slog.Logger) *MetricsServer {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	if checker != nil {
		mux.HandleFunc("/health", checker.LivenessHandler())
		mux.HandleFunc("/ready", checker.ReadinessHandler())
	}

	return &MetricsServer{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: serverReadTimeout,
			ReadTimeout:       serverReadTimeout,
			WriteTimeout:      serverWriteTimeout,
			IdleTimeout:       serverIdleTimeout,
		},
		logger: logger.With("component", "daemon.metrics_server"),
	}
}

// Start binds the listen address and serves in the background. Serve
// errors are sent to errCh.
func (s *MetricsServer) Start(errCh chan<- error) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln

	s.logger.Info("serving metrics", "address", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server error: %w", err)
		}
	}()
	return nil
}

// Addr returns the bound address, empty before Start.
func (s *MetricsServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, serverShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("metrics server shutdown error: %w", err)
		}
	})
	return shutdownErr
}
