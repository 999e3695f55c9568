package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gear6io/quackview/server/journal/records"
	"github.com/gear6io/quackview/server/types"
)

// fakeBridge records calls and returns canned results
type fakeBridge struct {
	initCalls atomic.Int32
	initErr   error
	initGate  chan struct{}

	importOK  bool
	importErr error

	queryResult *types.QueryResult
	queryErr    error

	tables    []types.TableInfo
	tablesErr error
	indices   []types.IndexInfo
	indexOK   bool
	indexErr  error

	closed atomic.Bool
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{importOK: true, indexOK: true}
}

func (f *fakeBridge) InitDatabase(ctx context.Context, dbPath string) error {
	f.initCalls.Add(1)
	if f.initGate != nil {
		<-f.initGate
	}
	return f.initErr
}

func (f *fakeBridge) ImportParquetFile(ctx context.Context, filePath, tableName string) (bool, error) {
	return f.importOK, f.importErr
}

func (f *fakeBridge) RunQuery(ctx context.Context, query string) (*types.QueryResult, error) {
	return f.queryResult, f.queryErr
}

func (f *fakeBridge) GetAllTables(ctx context.Context) ([]types.TableInfo, error) {
	return f.tables, f.tablesErr
}

func (f *fakeBridge) GetAllIndices(ctx context.Context) ([]types.IndexInfo, error) {
	return f.indices, nil
}

func (f *fakeBridge) CreateTableIndex(ctx context.Context, tableName, columnName string) (bool, error) {
	return f.indexOK, f.indexErr
}

func (f *fakeBridge) Close() error {
	f.closed.Store(true)
	return nil
}

// memJournal keeps entries in memory
type memJournal struct {
	mu      sync.Mutex
	entries []records.Entry
	err     error
}

func (m *memJournal) Record(ctx context.Context, entry *records.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memJournal) Close() error { return nil }

func (m *memJournal) snapshot() []records.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]records.Entry(nil), m.entries...)
}
