package migrations

import (
	"context"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/uptrace/bun"
)

// Migration002 records operation duration and indexes entries by table
type Migration002 struct{}

// Version returns the migration version
func (m *Migration002) Version() int {
	return 2
}

// Name returns the migration name
func (m *Migration002) Name() string {
	return "journal_duration"
}

// Description returns the migration description
func (m *Migration002) Description() string {
	return "Add duration_ms and a per-table lookup index"
}

// Up runs the migration
func (m *Migration002) Up(ctx context.Context, tx bun.Tx) error {
	if _, err := tx.ExecContext(ctx, `ALTER TABLE journal_entries ADD COLUMN duration_ms REAL NOT NULL DEFAULT 0`); err != nil {
		return errors.New(MigrationAlterFailed, "failed to add duration_ms column", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_journal_table ON journal_entries(table_name, kind)`); err != nil {
		return errors.New(MigrationIndexCreationFailed, "failed to create journal index", err).AddContext("index", "idx_journal_table")
	}

	return nil
}
