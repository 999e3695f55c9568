// Package service is the data-access façade over the engine bridge. It owns
// one-time initialization, the error taxonomy and instrumentation.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge"
	"github.com/gear6io/quackview/server/config"
	"github.com/gear6io/quackview/server/journal"
	"github.com/gear6io/quackview/server/journal/records"
	"github.com/gear6io/quackview/server/metrics"
	"github.com/gear6io/quackview/server/paths"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/storage/parquet"
	"github.com/gear6io/quackview/server/types"
	"github.com/rs/zerolog"
)

// ComponentType defines the service component type identifier
const ComponentType = "service"

// Operation names used in logs and metrics
const (
	opInitialize   = "initialize"
	opImport       = "import_file"
	opQuery        = "execute_query"
	opListTables   = "list_tables"
	opListIndices  = "list_indices"
	opCreateIndex  = "create_index"
	opInfo         = "info"
	opQueryHistory = "query_history"
)

// Service implements Facade over a Bridge. Only initialization is
// serialized; every other operation goes straight to the engine.
type Service struct {
	cfg    *config.Config
	bridge bridge.Bridge
	logger zerolog.Logger

	paths     paths.PathManager
	jmu       sync.RWMutex
	journal   Journal
	queries   *query.ExecutionManager
	preflight PreflightFunc
	metrics   bool

	initMu sync.Mutex
	state  atomic.Int32
	dbPath atomic.Pointer[string]
}

var _ Facade = (*Service)(nil)

// New creates a service in the Uninitialized state. Nothing touches the
// disk until Initialize.
func New(cfg *config.Config, b bridge.Bridge, logger zerolog.Logger, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.LoadDefaultConfig()
	}

	s := &Service{
		cfg:       cfg,
		bridge:    b,
		logger:    logger.With().Str("component", ComponentType).Logger(),
		preflight: parquet.Inspect,
		metrics:   true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.queries == nil {
		s.queries = query.NewExecutionManager(s.logger)
	}
	s.setState(StateUninitialized)

	return s
}

// State returns the current initialization state
func (s *Service) State() State {
	return State(s.state.Load())
}

func (s *Service) setState(st State) {
	s.state.Store(int32(st))
	if s.metrics {
		metrics.SetEngineState(int(st))
	}
}

// DatabasePath returns the opened database file, empty before the first
// successful Initialize
func (s *Service) DatabasePath() string {
	if p := s.dbPath.Load(); p != nil {
		return *p
	}
	return ""
}

// Initialize opens the database once. Calls made while Ready return nil
// without reopening. After a failure the state is Failed and a later call
// tries again.
func (s *Service) Initialize(ctx context.Context) error {
	if s.State() == StateReady {
		return nil
	}

	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.State() == StateReady {
		return nil
	}

	start := time.Now()
	s.setState(StateInitializing)

	err := s.initialize(ctx)
	s.observe(opInitialize, start, err)
	if err != nil {
		s.setState(StateFailed)
		wrapped := errors.New(ErrInitialization, "failed to initialize database", err)
		s.logger.Error().Err(err).Str("operation", opInitialize).Msg("Initialization failed")
		return wrapped
	}

	s.setState(StateReady)
	s.logger.Info().
		Str("path", s.DatabasePath()).
		Dur("duration", time.Since(start)).
		Msg("Database initialized")
	return nil
}

func (s *Service) initialize(ctx context.Context) error {
	pm := s.paths
	if pm == nil {
		base, err := paths.ResolveBasePath(s.cfg.Storage.DataPath)
		if err != nil {
			return err
		}
		pm = paths.NewManager(base, s.cfg.Storage.DBFile, config.DefaultJournalFile)
	}

	if err := pm.EnsureDirectoryStructure(); err != nil {
		return err
	}

	dbPath := pm.GetDatabasePath()
	if err := s.bridge.InitDatabase(ctx, dbPath); err != nil {
		return err
	}

	s.paths = pm
	s.dbPath.Store(&dbPath)

	s.jmu.Lock()
	defer s.jmu.Unlock()
	if s.journal == nil && s.cfg.Storage.Journal {
		j, err := journal.Open(ctx, pm.GetJournalPath(), s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Import journal unavailable, continuing without it")
		} else {
			s.journal = j
		}
	}

	return nil
}

// requireReady rejects calls made before a successful Initialize
func (s *Service) requireReady(operation string) error {
	if st := s.State(); st != StateReady {
		err := errors.New(ErrNotInitialized, "database is not initialized", nil).
			AddContext("operation", operation).
			AddContext("state", st.String())
		s.logger.Warn().Str("operation", operation).Str("state", st.String()).Msg("Operation rejected before initialization")
		return err
	}
	return nil
}

// ImportFile imports a parquet file as tableName. A false result from the
// engine is reported as an import error.
func (s *Service) ImportFile(ctx context.Context, path, tableName string) (bool, error) {
	if err := s.requireReady(opImport); err != nil {
		return false, err
	}

	start := time.Now()

	var recordCount int64
	stats, perr := s.preflight(ctx, path)
	if perr != nil {
		s.logger.Warn().Err(perr).Str("file", path).Msg("Parquet preflight failed, deferring to engine")
	} else {
		recordCount = stats.NumRows
		s.logger.Debug().
			Str("file", path).
			Int64("rows", stats.NumRows).
			Int("row_groups", stats.NumRowGroups).
			Strs("columns", stats.ColumnNames()).
			Msg("Parquet preflight")
	}

	ok, err := s.bridge.ImportParquetFile(ctx, path, tableName)
	if err == nil && !ok {
		err = errors.New(bridge.ErrImportFailed, "engine reported import failure", nil)
	}

	s.record(ctx, &records.Entry{
		Kind:        records.KindImport,
		TableName:   tableName,
		Target:      path,
		RecordCount: recordCount,
		Succeeded:   err == nil,
		Message:     errMessage(err),
		DurationMs:  millisSince(start),
	})
	s.observe(opImport, start, err)

	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Str("table", tableName).Msg("Import failed")
		return false, errors.New(ErrImport, "failed to import file", err).
			AddContext("file", path).
			AddContext("table", tableName)
	}

	s.logger.Info().Str("file", path).Str("table", tableName).Int64("rows", recordCount).Msg("File imported")
	return true, nil
}

// ExecuteQuery runs query text as-is. Nothing is validated before the engine
// sees it.
func (s *Service) ExecuteQuery(ctx context.Context, text string) (*types.QueryResult, error) {
	if err := s.requireReady(opQuery); err != nil {
		return nil, err
	}

	if maxAge := s.cfg.Query.HistoryMaxAge; maxAge > 0 {
		s.queries.CleanupCompletedQueries(maxAge)
	}

	start := time.Now()
	id := s.queries.StartQuery(text, clientAddrFrom(ctx))

	result, err := s.bridge.RunQuery(ctx, text)

	var rows int64
	if result != nil {
		rows = result.RowCount
	}
	if cerr := s.queries.CompleteQuery(id, rows, err); cerr != nil {
		s.logger.Warn().Err(cerr).Str("query_id", id).Msg("Failed to complete query tracking")
	}
	s.observe(opQuery, start, err)

	if err != nil {
		s.logger.Error().Err(err).Str("query_id", id).Msg("Query failed")
		return nil, errors.New(ErrQuery, "query failed", err).AddContext("query_id", id)
	}

	return result, nil
}

// ListTables returns a fresh catalog snapshot of all tables
func (s *Service) ListTables(ctx context.Context) ([]types.TableInfo, error) {
	if err := s.requireReady(opListTables); err != nil {
		return nil, err
	}

	start := time.Now()
	tables, err := s.bridge.GetAllTables(ctx)
	s.observe(opListTables, start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list tables")
		return nil, errors.New(ErrCatalog, "failed to list tables", err)
	}
	return tables, nil
}

// ListIndices returns a fresh catalog snapshot of all indices
func (s *Service) ListIndices(ctx context.Context) ([]types.IndexInfo, error) {
	if err := s.requireReady(opListIndices); err != nil {
		return nil, err
	}

	start := time.Now()
	indices, err := s.bridge.GetAllIndices(ctx)
	s.observe(opListIndices, start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list indices")
		return nil, errors.New(ErrCatalog, "failed to list indices", err)
	}
	return indices, nil
}

// CreateIndex creates a single-column index on tableName
func (s *Service) CreateIndex(ctx context.Context, tableName, columnName string) (bool, error) {
	if err := s.requireReady(opCreateIndex); err != nil {
		return false, err
	}

	start := time.Now()
	ok, err := s.bridge.CreateTableIndex(ctx, tableName, columnName)
	if err == nil && !ok {
		err = errors.New(bridge.ErrIndexCreateFailed, "engine reported index failure", nil)
	}

	s.record(ctx, &records.Entry{
		Kind:       records.KindIndex,
		TableName:  tableName,
		Target:     columnName,
		Succeeded:  err == nil,
		Message:    errMessage(err),
		DurationMs: millisSince(start),
	})
	s.observe(opCreateIndex, start, err)

	if err != nil {
		s.logger.Error().Err(err).Str("table", tableName).Str("column", columnName).Msg("Index creation failed")
		return false, errors.New(ErrIndex, "failed to create index", err).
			AddContext("table", tableName).
			AddContext("column", columnName)
	}

	s.logger.Info().Str("index", bridge.IndexName(tableName, columnName)).Msg("Index created")
	return true, nil
}

// Info summarizes one table snapshot and one index snapshot. The two are
// read separately and may disagree.
func (s *Service) Info(ctx context.Context) (*types.DatabaseInfo, error) {
	if err := s.requireReady(opInfo); err != nil {
		return nil, err
	}

	start := time.Now()
	tables, err := s.bridge.GetAllTables(ctx)
	if err == nil {
		var indices []types.IndexInfo
		indices, err = s.bridge.GetAllIndices(ctx)
		if err == nil {
			s.observe(opInfo, start, nil)
			return types.BuildDatabaseInfo(tables, indices), nil
		}
	}

	s.observe(opInfo, start, err)
	s.logger.Error().Err(err).Msg("Failed to build database info")
	return nil, errors.New(ErrCatalog, "failed to read database info", err)
}

// QueryHistory returns tracked queries, newest first
func (s *Service) QueryHistory(ctx context.Context) ([]query.QueryInfo, error) {
	if err := s.requireReady(opQueryHistory); err != nil {
		return nil, err
	}
	return s.queries.ListQueries(), nil
}

// Close releases the engine and the journal. The service returns to
// Uninitialized.
func (s *Service) Close() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.setState(StateUninitialized)

	s.jmu.Lock()
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close journal")
		}
		s.journal = nil
	}
	s.jmu.Unlock()

	if err := s.bridge.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to close engine")
		return err
	}
	return nil
}

// record writes a journal entry. Failures are logged and dropped.
func (s *Service) record(ctx context.Context, entry *records.Entry) {
	s.jmu.RLock()
	defer s.jmu.RUnlock()

	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("kind", entry.Kind).Str("table", entry.TableName).Msg("Failed to write journal entry")
	}
}

func (s *Service) observe(operation string, start time.Time, err error) {
	if s.metrics {
		metrics.ObserveOperation(operation, start, err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func millisSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)
}
