package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/config"
	httpserver "github.com/gear6io/quackview/server/protocols/http"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/service"
	"github.com/gear6io/quackview/server/types"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFacade struct {
	err       error
	imported  [2]string
	lastQuery string
}

func (s *stubFacade) Initialize(ctx context.Context) error { return s.err }

func (s *stubFacade) ImportFile(ctx context.Context, path, tableName string) (bool, error) {
	s.imported = [2]string{path, tableName}
	return s.err == nil, s.err
}

func (s *stubFacade) ExecuteQuery(ctx context.Context, q string) (*types.QueryResult, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return &types.QueryResult{
		Columns:         []string{"id", "name"},
		Rows:            [][]string{{"1", "a"}, {"2", types.NullCell}},
		RowCount:        2,
		ExecutionTimeMs: 1.25,
	}, nil
}

func (s *stubFacade) ListTables(ctx context.Context) ([]types.TableInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []types.TableInfo{{
		Name:      "trips",
		RowCount:  37,
		SizeBytes: 4096,
		Columns:   []types.ColumnInfo{{Name: "id", DataType: "BIGINT"}},
	}}, nil
}

func (s *stubFacade) ListIndices(ctx context.Context) ([]types.IndexInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []types.IndexInfo{{IndexName: "idx_trips_id", TableName: "trips", ColumnNames: []string{"id"}}}, nil
}

func (s *stubFacade) CreateIndex(ctx context.Context, tableName, columnName string) (bool, error) {
	return s.err == nil, s.err
}

func (s *stubFacade) Info(ctx context.Context) (*types.DatabaseInfo, error) {
	tables, _ := s.ListTables(ctx)
	indices, _ := s.ListIndices(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return types.BuildDatabaseInfo(tables, indices), nil
}

func (s *stubFacade) QueryHistory(ctx context.Context) ([]query.QueryInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []query.QueryInfo{{ID: "q1", Query: "SELECT 1", Status: query.QueryStatusCompleted, RowCount: 1}}, nil
}

func newClient(t *testing.T, f service.Facade) *Client {
	t.Helper()
	srv := httpserver.NewServer(config.LoadDefaultConfig(), f, zerolog.Nop())
	ts := httptest.NewServer(adaptor.FiberApp(srv.App()))
	t.Cleanup(ts.Close)

	c, err := NewClient(&Options{BaseURL: ts.URL + "/", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestClientRoundTrip(t *testing.T) {
	f := &stubFacade{}
	c := newClient(t, f)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Initialize(ctx))

	ok, err := c.ImportFile(ctx, "/data/trips.parquet", "trips")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, [2]string{"/data/trips.parquet", "trips"}, f.imported)

	result, err := c.ExecuteQuery(ctx, "SELECT * FROM trips")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM trips", f.lastQuery)
	assert.Equal(t, []string{"id", "name"}, result.Columns)
	assert.Equal(t, types.NullCell, result.Rows[1][1])
	assert.NoError(t, result.Validate())

	tables, err := c.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, int64(37), tables[0].RowCount)

	indices, err := c.ListIndices(ctx)
	require.NoError(t, err)
	require.Len(t, indices, 1)
	assert.Equal(t, []string{"id"}, indices[0].ColumnNames)

	ok, err = c.CreateIndex(ctx, "trips", "id")
	require.NoError(t, err)
	assert.True(t, ok)

	info, err := c.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.TableCount)
	assert.Equal(t, []string{"idx_trips_id"}, info.Indices["trips"])

	history, err := c.QueryHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, query.QueryStatusCompleted, history[0].Status)
}

func TestClientKeepsErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not initialized", errors.New(service.ErrNotInitialized, "not ready", nil), service.IsNotInitializedError},
		{"import", errors.New(service.ErrImport, "table exists", nil), service.IsImportError},
		{"query", errors.New(service.ErrQuery, "syntax error", nil), service.IsQueryError},
		{"index", errors.New(service.ErrIndex, "no such column", nil), service.IsIndexError},
		{"catalog", errors.New(service.ErrCatalog, "catalog read", nil), service.IsCatalogError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, &stubFacade{err: tt.err})

			_, err := c.ExecuteQuery(context.Background(), "SELECT 1")
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestClientUnknownCodeBecomesInternal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer ts.Close()

	c, err := NewClient(&Options{BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = c.ListTables(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CommonInternal))
	assert.Contains(t, err.Error(), http.StatusText(http.StatusBadGateway))
}

func TestClientTransportError(t *testing.T) {
	c, err := NewClient(&Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	require.NoError(t, err)

	err = c.Initialize(context.Background())
	require.Error(t, err)
	assert.False(t, errors.IsCoded(err))
}

func TestParseDSN(t *testing.T) {
	opt, err := ParseDSN("quackview://localhost:2847?timeout=3s")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:2847", opt.BaseURL)
	assert.Equal(t, 3*time.Second, opt.Timeout)

	_, err = ParseDSN("postgres://localhost")
	assert.Error(t, err)

	_, err = ParseDSN("quackview://")
	assert.Error(t, err)

	_, err = ParseDSN("quackview://localhost?timeout=soon")
	assert.Error(t, err)
}
