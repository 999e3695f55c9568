package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathManager(t *testing.T) {
	pm := NewManager("/tmp/test", "quackview.duckdb", "journal.db")
	require.NotNil(t, pm)

	assert.Equal(t, "/tmp/test", pm.GetBasePath())
	assert.Equal(t, "/tmp/test/quackview.duckdb", pm.GetDatabasePath())
	assert.Equal(t, "/tmp/test/journal.db", pm.GetJournalPath())
	assert.Equal(t, "/tmp/test/logs/quackview.log", pm.GetLogPath())
	assert.Equal(t, ComponentType, pm.GetType())
}

func TestResolveBasePath(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		p, err := ResolveBasePath("/data/qv/")
		require.NoError(t, err)
		assert.Equal(t, "/data/qv", p)
	})

	t.Run("user dir fallback", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

		p, err := ResolveBasePath("")
		require.NoError(t, err)
		assert.Equal(t, appDirName, filepath.Base(p))
	})
}

func TestEnsureDirectoryStructure(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "data")
	pm := NewManager(base, "db.duckdb", "journal.db")

	require.NoError(t, pm.EnsureDirectoryStructure())

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(base, probeName))
	assert.True(t, os.IsNotExist(err))

	// idempotent
	require.NoError(t, pm.EnsureDirectoryStructure())
}

func TestEnsureDirectoryStructureReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}

	base := t.TempDir()
	require.NoError(t, os.Chmod(base, 0555))
	t.Cleanup(func() { os.Chmod(base, 0755) })

	err := NewManager(base, "db.duckdb", "journal.db").EnsureDirectoryStructure()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrNotWritable))
}
