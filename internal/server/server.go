package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/timesync-io/timesync/internal/config"
	"github.com/timesync-io/timesync/internal/engine"
	"github.com/timesync-io/timesync/pkg/logger"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	registry *prometheus.Registry
	engine   *engine.Engine
	server   *http.Server
}

// New creates a new HTTP server
func New(cfg *config.Config, registry *prometheus.Registry, e *engine.Engine) *Server {
	return &Server{
		config:   cfg,
		registry: registry,
		engine:   e,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	handlers := NewHandlers(s.config, s.registry, s.engine)

	mux.HandleFunc("/metrics", handlers.MetricsHandler)
	mux.HandleFunc("/health", handlers.HealthHandler)
	mux.HandleFunc("/time", handlers.TimeHandler)
	mux.HandleFunc("/", handlers.IndexHandler)

	handler := Apply(mux)

	addr := s.config.Server.Address + ":" + strconv.Itoa(s.config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	logger.Infof("server", "Starting HTTP server on %s", addr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("server", "Shutting down HTTP server")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server", "Server error", err)
			return fmt.Errorf("HTTP server failed on %s: %w", s.server.Addr, err)
		}
		return nil
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server", "Server shutdown failed", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("server shutdown timeout after 10s: %w", err)
		}
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("server", "HTTP server stopped")
	return nil
}
