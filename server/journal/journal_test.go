package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gear6io/quackview/server/journal/records"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpenMigratesToLatest(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(availableMigrations()), v)
	assert.Equal(t, path, s.Path())

	// reopening applies nothing new
	require.NoError(t, s.Close())
	s2, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer s2.Close()

	v, err = s2.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(availableMigrations()), v)
}

func TestRecordAndRead(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	imp := &records.Entry{
		Kind:        records.KindImport,
		TableName:   "t1",
		Target:      "/data/sample.parquet",
		RecordCount: 25,
		Succeeded:   true,
		DurationMs:  12.5,
	}
	require.NoError(t, s.Record(ctx, imp))
	assert.NotEmpty(t, imp.ID)
	assert.False(t, imp.CreatedAt.IsZero())

	idx := &records.Entry{
		Kind:      records.KindIndex,
		TableName: "t1",
		Target:    "colX",
		Succeeded: false,
		Message:   "column not found",
		CreatedAt: imp.CreatedAt.Add(time.Millisecond),
	}
	require.NoError(t, s.Record(ctx, idx))

	other := &records.Entry{Kind: records.KindImport, TableName: "t2", Target: "b.parquet", Succeeded: true,
		CreatedAt: imp.CreatedAt.Add(2 * time.Millisecond)}
	require.NoError(t, s.Record(ctx, other))

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, other.ID, recent[0].ID)
	assert.Equal(t, idx.ID, recent[1].ID)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forT1, err := s.ForTable(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, forT1, 2)
	assert.Equal(t, records.KindImport, forT1[0].Kind)
	assert.Equal(t, int64(25), forT1[0].RecordCount)
	assert.Equal(t, 12.5, forT1[0].DurationMs)
	assert.True(t, forT1[0].Succeeded)
	assert.Equal(t, "column not found", forT1[1].Message)
	assert.False(t, forT1[1].Succeeded)
}

func TestRecordDuplicateID(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	e := &records.Entry{Kind: records.KindImport, TableName: "t1", Target: "a"}
	require.NoError(t, s.Record(ctx, e))

	dup := &records.Entry{ID: e.ID, Kind: records.KindImport, TableName: "t1", Target: "a"}
	assert.Error(t, s.Record(ctx, dup))
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "journal.db"), zerolog.Nop())
	assert.Error(t, err)
}
