package service

import (
	"context"

	"github.com/gear6io/quackview/server/paths"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/storage/parquet"
)

// Option customizes a Service
type Option func(*Service)

// PreflightFunc inspects a file before it is handed to the engine
type PreflightFunc func(ctx context.Context, path string) (*parquet.FileStats, error)

// WithJournal sets the journal instead of opening one from config
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithQueryManager shares an execution manager with the service
func WithQueryManager(em *query.ExecutionManager) Option {
	return func(s *Service) {
		s.queries = em
	}
}

// WithPathManager fixes on-disk locations instead of resolving them
func WithPathManager(pm paths.PathManager) Option {
	return func(s *Service) {
		s.paths = pm
	}
}

// WithPreflight replaces the parquet footer inspection
func WithPreflight(fn PreflightFunc) Option {
	return func(s *Service) {
		s.preflight = fn
	}
}

// WithMetrics toggles Prometheus instrumentation
func WithMetrics(enabled bool) Option {
	return func(s *Service) {
		s.metrics = enabled
	}
}
