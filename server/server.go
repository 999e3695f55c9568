package server

import (
	"context"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge/duckdb"
	"github.com/gear6io/quackview/server/config"
	"github.com/gear6io/quackview/server/protocols/http"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/service"
	"github.com/rs/zerolog"
)

var (
	ErrServerCreateFailed = errors.MustNewCode("server.create_failed")
	ErrServerStartFailed  = errors.MustNewCode("server.start_failed")
)

// Server owns the engine, the façade and the HTTP API for `quackview serve`
type Server struct {
	config     *config.Config
	logger     zerolog.Logger
	service    *service.Service
	queries    *query.ExecutionManager
	httpServer *http.Server
	startTime  time.Time
}

// New creates a server instance. The database is not opened until Start.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	b, err := duckdb.New(EngineOptions(cfg), logger)
	if err != nil {
		return nil, errors.New(ErrServerCreateFailed, "failed to create engine bridge", err)
	}

	queries := query.NewExecutionManager(logger)
	svc := service.New(cfg, b, logger, service.WithQueryManager(queries))

	return &Server{
		config:     cfg,
		logger:     logger.With().Str("component", "server").Logger(),
		service:    svc,
		queries:    queries,
		httpServer: http.NewServer(cfg, svc, logger),
		startTime:  time.Now(),
	}, nil
}

// EngineOptions maps the engine and import sections of cfg to bridge options
func EngineOptions(cfg *config.Config) duckdb.Options {
	return duckdb.Options{
		MaxMemoryMB:     cfg.Engine.MaxMemoryMB,
		Threads:         cfg.Engine.Threads,
		StatsWorkers:    cfg.Engine.StatsWorkers,
		ReplaceExisting: cfg.Import.ReplaceExisting,
	}
}

// Start opens the database and starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().Msg("Starting quackview server...")

	if err := s.service.Initialize(ctx); err != nil {
		return errors.New(ErrServerStartFailed, "failed to initialize database", err)
	}

	if err := s.httpServer.Start(ctx); err != nil {
		return errors.New(ErrServerStartFailed, "failed to start HTTP server", err)
	}

	s.logger.Info().
		Bool("http_enabled", s.config.HTTP.Enabled).
		Str("http_address", s.config.GetHTTPListenAddress()).
		Str("database", s.service.DatabasePath()).
		Msg("Server started")

	return nil
}

// Shutdown stops the HTTP server and closes the database
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server...")

	if s.config.HTTP.Enabled {
		if err := s.httpServer.Stop(); err != nil {
			s.logger.Error().Err(err).Msg("Error stopping HTTP server")
		}
	}

	if err := s.service.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
		return err
	}

	s.logger.Info().Dur("uptime", s.GetUptime()).Msg("Graceful shutdown completed")
	return nil
}

// Service returns the façade the server exposes
func (s *Server) Service() *service.Service {
	return s.service
}

// GetUptime returns the server uptime
func (s *Server) GetUptime() time.Duration {
	return time.Since(s.startTime)
}

// GetStatus returns the server status
func (s *Server) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"uptime":       s.GetUptime().String(),
		"start_time":   s.startTime,
		"state":        s.service.State().String(),
		"database":     s.service.DatabasePath(),
		"http_enabled": s.config.HTTP.Enabled,
		"http_address": s.config.GetHTTPListenAddress(),
		"queries":      s.queries.GetStats(),
	}
}
