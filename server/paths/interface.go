package paths

// PathManager resolves every on-disk location the application uses
type PathManager interface {
	GetBasePath() string
	GetDatabasePath() string
	GetJournalPath() string
	GetLogPath() string

	// EnsureDirectoryStructure creates the base directory and verifies it
	// accepts writes
	EnsureDirectoryStructure() error
}
