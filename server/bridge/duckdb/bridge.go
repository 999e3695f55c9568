// Package duckdb implements the engine bridge over an embedded DuckDB
// database reached through database/sql.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
)

// ComponentType defines the bridge component type identifier
const ComponentType = "duckdb_bridge"

// DriverName is the database/sql driver the bridge opens
const DriverName = "duckdb"

// Options configures the engine on open
type Options struct {
	MaxMemoryMB     int
	Threads         int
	StatsWorkers    int
	ReplaceExisting bool
}

// Bridge talks to one DuckDB database file. Queries, imports and index
// creation share one session connection so temp tables, SET and open
// transactions survive between calls; catalog statistics use the pool.
type Bridge struct {
	opts   Options
	logger zerolog.Logger

	mu   sync.RWMutex
	db   *sql.DB
	pool *ants.Pool

	sessionMu sync.Mutex
	session   *sql.Conn
}

var _ bridge.Bridge = (*Bridge)(nil)

// New creates a bridge with no database open yet
func New(opts Options, logger zerolog.Logger) (*Bridge, error) {
	if opts.StatsWorkers < 1 {
		opts.StatsWorkers = 1
	}

	b := &Bridge{
		opts:   opts,
		logger: logger.With().Str("component", ComponentType).Logger(),
	}

	pool, err := b.newPool()
	if err != nil {
		return nil, err
	}
	b.pool = pool

	return b, nil
}

func (b *Bridge) newPool() (*ants.Pool, error) {
	pool, err := ants.NewPool(b.opts.StatsWorkers, ants.WithPanicHandler(func(v any) {
		b.logger.Error().Interface("panic", v).Msg("Statistics worker panic")
	}))
	if err != nil {
		return nil, errors.New(bridge.ErrWorkerPoolFailed, "failed to create statistics worker pool", err)
	}
	return pool, nil
}

// NewWithDB wraps an already open handle. InitDatabase will report it as
// already open.
func NewWithDB(db *sql.DB, opts Options, logger zerolog.Logger) (*Bridge, error) {
	b, err := New(opts, logger)
	if err != nil {
		return nil, err
	}
	b.db = db
	return b, nil
}

// InitDatabase opens or creates the database file at dbPath
func (b *Bridge) InitDatabase(ctx context.Context, dbPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db != nil {
		return errors.New(bridge.ErrAlreadyOpen, "database is already open", nil).AddContext("path", dbPath)
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return errors.New(bridge.ErrOpenFailed, "failed to open DuckDB database", err).AddContext("path", dbPath)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.New(bridge.ErrOpenFailed, "failed to ping DuckDB database", err).AddContext("path", dbPath)
	}

	// the session connection plus one per statistics worker
	db.SetMaxOpenConns(b.opts.StatsWorkers + 1)
	db.SetMaxIdleConns(b.opts.StatsWorkers + 1)
	db.SetConnMaxLifetime(time.Hour)

	if err := b.configure(ctx, db); err != nil {
		db.Close()
		return err
	}

	// a closed bridge released its pool
	if b.pool == nil {
		pool, err := b.newPool()
		if err != nil {
			db.Close()
			return err
		}
		b.pool = pool
	}

	b.db = db
	b.logger.Info().Str("path", dbPath).Msg("DuckDB database opened")
	return nil
}

func (b *Bridge) configure(ctx context.Context, db *sql.DB) error {
	var settings []string
	if b.opts.MaxMemoryMB > 0 {
		settings = append(settings, fmt.Sprintf("SET memory_limit='%dMB'", b.opts.MaxMemoryMB))
	}
	if b.opts.Threads > 0 {
		settings = append(settings, fmt.Sprintf("SET threads=%d", b.opts.Threads))
	}

	for _, stmt := range settings {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.New(bridge.ErrConfigureFailed, "failed to configure DuckDB", err).AddContext("statement", stmt)
		}
	}
	return nil
}

// handle returns the open database or a not-open error
func (b *Bridge) handle() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, errors.New(bridge.ErrNotOpen, "database is not open", nil)
	}
	return b.db, nil
}

// withSession runs fn on the session connection, opening it on first use.
// Calls are serialized: a DuckDB connection runs one statement at a time.
func (b *Bridge) withSession(ctx context.Context, fn func(conn *sql.Conn) error) error {
	db, err := b.handle()
	if err != nil {
		return err
	}

	b.sessionMu.Lock()
	defer b.sessionMu.Unlock()

	if b.session == nil {
		conn, err := db.Conn(ctx)
		if err != nil {
			return errors.New(bridge.ErrOpenFailed, "failed to open session connection", err)
		}
		b.session = conn
	}
	return fn(b.session)
}

// Close closes the database and releases the statistics pool
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessionMu.Lock()
	if b.session != nil {
		if err := b.session.Close(); err != nil {
			b.logger.Warn().Err(err).Msg("Failed to close session connection")
		}
		b.session = nil
	}
	b.sessionMu.Unlock()

	if b.pool != nil {
		_ = b.pool.ReleaseTimeout(3 * time.Second)
		b.pool = nil
	}

	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	if err != nil {
		return errors.New(bridge.ErrCloseFailed, "failed to close DuckDB database", err)
	}
	return nil
}
