package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/config"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/service"
	"github.com/gear6io/quackview/server/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFacade struct {
	err         error
	lastImport  [2]string
	lastIndex   [2]string
	lastQuery   string
	lastAddr    string
	initialized bool
}

func (f *fakeFacade) Initialize(ctx context.Context) error {
	f.initialized = f.err == nil
	return f.err
}

func (f *fakeFacade) ImportFile(ctx context.Context, path, tableName string) (bool, error) {
	f.lastImport = [2]string{path, tableName}
	return f.err == nil, f.err
}

func (f *fakeFacade) ExecuteQuery(ctx context.Context, q string) (*types.QueryResult, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &types.QueryResult{Columns: []string{"a"}, Rows: [][]string{{"1"}}, RowCount: 1, ExecutionTimeMs: 0.5}, nil
}

func (f *fakeFacade) ListTables(ctx context.Context) ([]types.TableInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []types.TableInfo{{Name: "t1", RowCount: 3, Columns: []types.ColumnInfo{{Name: "a", DataType: "INTEGER"}}}}, nil
}

func (f *fakeFacade) ListIndices(ctx context.Context) ([]types.IndexInfo, error) {
	return []types.IndexInfo{{IndexName: "idx_t1_a", TableName: "t1", ColumnNames: []string{"a"}}}, f.err
}

func (f *fakeFacade) CreateIndex(ctx context.Context, tableName, columnName string) (bool, error) {
	f.lastIndex = [2]string{tableName, columnName}
	return f.err == nil, f.err
}

func (f *fakeFacade) Info(ctx context.Context) (*types.DatabaseInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return types.BuildDatabaseInfo(nil, nil), nil
}

func (f *fakeFacade) QueryHistory(ctx context.Context) ([]query.QueryInfo, error) {
	return []query.QueryInfo{{ID: "q1", Query: "SELECT 1", Status: query.QueryStatusCompleted}}, f.err
}

func newTestServer(f *fakeFacade) *Server {
	return NewServer(config.LoadDefaultConfig(), f, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	resp, body := do(t, newTestServer(&fakeFacade{}), "GET", "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestImportDefaultsTableName(t *testing.T) {
	f := &fakeFacade{}
	resp, body := do(t, newTestServer(f), "POST", "/api/v1/import", `{"path":"/data/my-file.parquet"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, [2]string{"/data/my-file.parquet", "my_file"}, f.lastImport)
	assert.Contains(t, string(body), `"table":"my_file"`)
}

func TestImportValidation(t *testing.T) {
	resp, body := do(t, newTestServer(&fakeFacade{}), "POST", "/api/v1/import", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var eb ErrorBody
	require.NoError(t, json.Unmarshal(body, &eb))
	assert.Equal(t, errors.CommonValidation.String(), eb.Error.Code)

	resp, _ = do(t, newTestServer(&fakeFacade{}), "POST", "/api/v1/import", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueryRoundTrip(t *testing.T) {
	f := &fakeFacade{}
	resp, body := do(t, newTestServer(f), "POST", "/api/v1/query", `{"query":"SELECT 1"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SELECT 1", f.lastQuery)

	var res types.QueryResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, []string{"a"}, res.Columns)
	assert.Equal(t, int64(1), res.RowCount)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(&fakeFacade{})

	resp, body := do(t, s, "GET", "/api/v1/tables", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"t1"`)

	resp, body = do(t, s, "GET", "/api/v1/indices", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"indexName":"idx_t1_a"`)

	resp, _ = do(t, s, "GET", "/api/v1/info", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, s, "GET", "/api/v1/queries", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"id":"q1"`)
}

func TestCreateIndexRoute(t *testing.T) {
	f := &fakeFacade{}
	resp, body := do(t, newTestServer(f), "POST", "/api/v1/indices", `{"table":"t1","column":"colX"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, [2]string{"t1", "colX"}, f.lastIndex)
	assert.Contains(t, string(body), `"indexName":"idx_t1_colX"`)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"not initialized", errors.New(service.ErrNotInitialized, "nope", nil), "GET", "/api/v1/tables", "", http.StatusConflict, "service.not_initialized"},
		{"import", errors.New(service.ErrImport, "bad file", nil), "POST", "/api/v1/import", `{"path":"x.parquet"}`, http.StatusUnprocessableEntity, "service.import"},
		{"index", errors.New(service.ErrIndex, "bad column", nil), "POST", "/api/v1/indices", `{"table":"t","column":"c"}`, http.StatusUnprocessableEntity, "service.index"},
		{"query", errors.New(service.ErrQuery, "syntax", nil), "POST", "/api/v1/query", `{"query":"SELEC"}`, http.StatusBadRequest, "service.query"},
		{"catalog", errors.New(service.ErrCatalog, "io", nil), "GET", "/api/v1/info", "", http.StatusInternalServerError, "service.catalog"},
		{"initialization", errors.New(service.ErrInitialization, "disk", nil), "POST", "/api/v1/initialize", "", http.StatusInternalServerError, "service.initialization"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, newTestServer(&fakeFacade{err: tt.err}), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var eb ErrorBody
			require.NoError(t, json.Unmarshal(body, &eb))
			assert.Equal(t, tt.code, eb.Error.Code)
			assert.NotEmpty(t, eb.Error.Message)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	resp, body := do(t, newTestServer(&fakeFacade{}), "GET", "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), errors.CommonNotFound.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeFacade{})
	do(t, s, "GET", "/health", "")

	resp, body := do(t, s, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "quackview_http_requests_total")
}
