package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillvet/internal/observability"
)

const shutdownTimeout = 30 * time.Second

// Start brings up telemetry and the HTTP listener, then blocks until a
// shutdown signal or a listener failure.
func (s *Server) Start() error {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)
	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			s.Logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	mux := s.setupRoutes(om)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      om.HTTPMiddleware()(mux),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	s.displayServerInfo()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())
		return s.drainAndStop(httpServer)
	}
}

// drainAndStop stops accepting new sessions, releases limiter state, and
// drains in-flight requests within the shutdown timeout.
func (s *Server) drainAndStop(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.Deps.Registry != nil {
		s.Deps.Registry.Close()
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}

	s.Logger.Info("Shutting down HTTP server...")
	if err := httpServer.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return httpServer.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}
