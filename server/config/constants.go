package config

const (
	// DefaultConfigFile is looked up in the working directory
	DefaultConfigFile = "quackview.yml"

	// DefaultDBFile is the deterministic name of the engine database file
	DefaultDBFile = "quackview.duckdb"

	// DefaultJournalFile holds the import and index journal
	DefaultJournalFile = "journal.db"

	// AppDirName is the per-user directory created under os.UserConfigDir
	AppDirName = "quackview"
)

// HTTP API defaults. The port is kept clear of 8080/3000/5000 and the
// common database ports.
const (
	DEFAULT_HTTP_PORT    = 2847
	DEFAULT_HTTP_ADDRESS = "127.0.0.1"
)

const (
	MIN_PORT = 1
	MAX_PORT = 65535
)

// IsValidPort checks if a port number is within valid range
func IsValidPort(port int) bool {
	return port >= MIN_PORT && port <= MAX_PORT
}
