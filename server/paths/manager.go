package paths

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gear6io/quackview/pkg/errors"
)

// ComponentType defines the path manager component type identifier
const ComponentType = "paths"

const (
	appDirName  = "quackview"
	probeName   = ".write_probe"
	logFileName = "quackview.log"
)

// Manager implements the PathManager interface
type Manager struct {
	basePath    string
	dbFile      string
	journalFile string
}

// NewManager creates a path manager rooted at basePath
func NewManager(basePath, dbFile, journalFile string) *Manager {
	return &Manager{
		basePath:    basePath,
		dbFile:      dbFile,
		journalFile: journalFile,
	}
}

// ResolveBasePath returns configured when set, otherwise the per-user
// application directory
func ResolveBasePath(configured string) (string, error) {
	if configured != "" {
		return filepath.Clean(configured), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.New(ErrUserDirUnavailable, "failed to resolve user config directory", err)
	}
	return filepath.Join(dir, appDirName), nil
}

// GetBasePath returns the base data path
func (pm *Manager) GetBasePath() string {
	return pm.basePath
}

// GetDatabasePath returns the engine database file path
func (pm *Manager) GetDatabasePath() string {
	return filepath.Join(pm.basePath, pm.dbFile)
}

// GetJournalPath returns the import journal database path
func (pm *Manager) GetJournalPath() string {
	return filepath.Join(pm.basePath, pm.journalFile)
}

// GetLogPath returns the default log file path
func (pm *Manager) GetLogPath() string {
	return filepath.Join(pm.basePath, "logs", logFileName)
}

// EnsureDirectoryStructure creates the base directory and probes it for writes
func (pm *Manager) EnsureDirectoryStructure() error {
	if err := os.MkdirAll(pm.basePath, 0755); err != nil {
		return errors.New(ErrDirectoryCreationFailed, "failed to create directory", err).AddContext("directory", pm.basePath)
	}

	probe := filepath.Join(pm.basePath, probeName)
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.New(ErrNotWritable, "data directory is not writable", err).AddContext("directory", pm.basePath)
	}
	f.Close()
	os.Remove(probe)

	return nil
}

// GetType returns the component type identifier
func (pm *Manager) GetType() string {
	return ComponentType
}

// Shutdown is a no-op; the manager holds no resources
func (pm *Manager) Shutdown(ctx context.Context) error {
	return nil
}
