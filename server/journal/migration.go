package journal

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/journal/migrations"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

// Migration interface that all migration files must implement
type Migration interface {
	Version() int
	Name() string
	Description() string
	Up(ctx context.Context, tx bun.Tx) error
}

// MigrationStatus represents the status of an applied migration
type MigrationStatus struct {
	Version   int    `json:"version"`
	Name      string `json:"name"`
	AppliedAt string `json:"applied_at"`
}

type migrationRecord struct {
	bun.BaseModel `bun:"table:bun_migrations"`

	Version   int    `bun:"version,pk,type:integer"`
	Name      string `bun:"name,type:text,notnull"`
	AppliedAt string `bun:"applied_at,type:text,notnull"`
}

// availableMigrations lists every migration in version order
func availableMigrations() []Migration {
	return []Migration{
		&migrations.Migration001{},
		&migrations.Migration002{},
	}
}

// migrateToLatest applies all pending migrations in one transaction
func migrateToLatest(ctx context.Context, db *bun.DB, logger zerolog.Logger) error {
	if _, err := db.NewCreateTable().Model((*migrationRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errors.New(ErrMigrationFailed, "failed to create migrations table", err)
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	var pending []Migration
	for _, m := range availableMigrations() {
		if m.Version() > current {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		logger.Debug().Int("version", current).Msg("Journal schema up to date")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.New(ErrMigrationFailed, "failed to begin migration transaction", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, m := range pending {
		if err := m.Up(ctx, tx); err != nil {
			_ = tx.Rollback()
			return errors.New(ErrMigrationFailed, "migration failed", err).
				AddContext("version", strconv.Itoa(m.Version())).
				AddContext("name", m.Name())
		}

		record := &migrationRecord{Version: m.Version(), Name: m.Name(), AppliedAt: now}
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			_ = tx.Rollback()
			return errors.New(ErrMigrationFailed, "failed to record migration", err).AddContext("version", strconv.Itoa(m.Version()))
		}

		logger.Info().Int("version", m.Version()).Str("name", m.Name()).Msg("Journal migration applied")
	}

	if err := tx.Commit(); err != nil {
		return errors.New(ErrMigrationFailed, "failed to commit migrations", err)
	}
	return nil
}

func currentVersion(ctx context.Context, db *bun.DB) (int, error) {
	var version int
	err := db.NewSelect().
		Model((*migrationRecord)(nil)).
		Column("version").
		Order("version DESC").
		Limit(1).
		Scan(ctx, &version)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.New(ErrMigrationFailed, "failed to read schema version", err)
	}
	return version, nil
}
