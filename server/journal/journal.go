// Package journal keeps a SQLite log of imports and index creations. It is
// an audit trail only and never answers catalog questions.
package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/journal/records"
	"github.com/gear6io/quackview/utils"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ComponentType defines the journal component type identifier
const ComponentType = "journal"

// Store persists journal entries with bun
type Store struct {
	db     *bun.DB
	path   string
	logger zerolog.Logger
}

// Open opens or creates the journal at path and migrates it to the latest
// schema
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", ComponentType).Logger()

	sqldb, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, errors.New(ErrOpenFailed, "failed to open SQLite database", err).AddContext("path", path)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.New(ErrOpenFailed, "failed to ping SQLite database", err).AddContext("path", path)
	}

	if err := migrateToLatest(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// Record stores entry, filling ID and CreatedAt when unset
func (s *Store) Record(ctx context.Context, entry *records.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.ID == "" {
		entry.ID = utils.GenerateULIDWithTime(entry.CreatedAt).String()
	}

	if _, err := s.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return errors.New(ErrWriteFailed, "failed to write journal entry", err).
			AddContext("kind", entry.Kind).
			AddContext("table", entry.TableName)
	}

	s.logger.Debug().Str("id", entry.ID).Str("kind", entry.Kind).Str("table", entry.TableName).Msg("Journal entry recorded")
	return nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]records.Entry, error) {
	entries := []records.Entry{}
	q := s.db.NewSelect().Model(&entries).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, errors.New(ErrReadFailed, "failed to read journal entries", err)
	}
	return entries, nil
}

// ForTable returns every entry naming table, oldest first
func (s *Store) ForTable(ctx context.Context, table string) ([]records.Entry, error) {
	entries := []records.Entry{}
	err := s.db.NewSelect().
		Model(&entries).
		Where("table_name = ?", table).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.New(ErrReadFailed, "failed to read journal entries", err).AddContext("table", table)
	}
	return entries, nil
}

// SchemaVersion returns the applied migration version
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return currentVersion(ctx, s.db)
}

// Path returns the journal database file
func (s *Store) Path() string {
	return s.path
}

// Close releases resources
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
