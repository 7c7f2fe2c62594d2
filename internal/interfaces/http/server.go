package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/colops/console/internal/config"
	"github.com/colops/console/internal/monitoring/logging"
)

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	srv    *http.Server
	cfg    config.ServerConfig
	logger logging.Logger
}

// NewServer builds the listener around handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger.Named("http"),
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("listening", logging.Int("port", s.cfg.Port))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	return s.srv.Shutdown(shutdownCtx)
}
