package migrations

import (
	"context"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/uptrace/bun"
)

// Package-specific error codes for migrations
var (
	MigrationTableCreationFailed = errors.MustNewCode("migrations.table_creation_failed")
	MigrationIndexCreationFailed = errors.MustNewCode("migrations.index_creation_failed")
	MigrationAlterFailed         = errors.MustNewCode("migrations.alter_failed")
)

// Migration001 creates the journal table
type Migration001 struct{}

// Version returns the migration version
func (m *Migration001) Version() int {
	return 1
}

// Name returns the migration name
func (m *Migration001) Name() string {
	return "journal_entries"
}

// Description returns the migration description
func (m *Migration001) Description() string {
	return "Journal of parquet imports and index creations"
}

// Up runs the migration
func (m *Migration001) Up(ctx context.Context, tx bun.Tx) error {
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS journal_entries (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			table_name   TEXT NOT NULL,
			target       TEXT NOT NULL,
			record_count INTEGER NOT NULL DEFAULT 0,
			succeeded    BOOLEAN NOT NULL,
			message      TEXT,
			created_at   TIMESTAMP NOT NULL
		)`); err != nil {
		return errors.New(MigrationTableCreationFailed, "failed to create journal_entries table", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_journal_created ON journal_entries(created_at)`); err != nil {
		return errors.New(MigrationIndexCreationFailed, "failed to create journal index", err).AddContext("index", "idx_journal_created")
	}

	return nil
}
