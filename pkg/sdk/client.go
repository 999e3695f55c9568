package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	coded "github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/service"
	"github.com/gear6io/quackview/server/types"
	"github.com/go-faster/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// Options configures a Client
type Options struct {
	// BaseURL of a running quackview server, e.g. http://127.0.0.1:2847
	BaseURL string

	// Timeout bounds each request. Zero means no timeout beyond ctx.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests
	HTTPClient *http.Client

	// Logging
	Logger *zap.Logger
}

// SetDefaults sets default values for options
func (o *Options) SetDefaults() *Options {
	if o.BaseURL == "" {
		o.BaseURL = "http://127.0.0.1:2847"
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")

	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}

	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return o
}

// ParseDSN parses quackview://host:port into Options
func ParseDSN(dsn string) (*Options, error) {
	if !strings.HasPrefix(dsn, "quackview://") {
		return nil, errors.New("invalid DSN format, must start with quackview://")
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse dsn")
	}
	if u.Host == "" {
		return nil, errors.New("invalid DSN format, missing host")
	}

	opt := &Options{BaseURL: "http://" + u.Host}
	if t := u.Query().Get("timeout"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return nil, errors.Wrap(err, "parse timeout")
		}
		opt.Timeout = d
	}
	return opt, nil
}

// Client talks to a quackview server over its JSON API. It satisfies
// service.Facade, so errors keep their taxonomy codes across the wire.
type Client struct {
	opt *Options
}

var _ service.Facade = (*Client)(nil)

// NewClient creates a new client
func NewClient(opt *Options) (*Client, error) {
	if opt == nil {
		opt = &Options{}
	}
	o := opt.SetDefaults()

	if _, err := url.Parse(o.BaseURL); err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	return &Client{opt: o}, nil
}

// Ping checks that the server answers its health endpoint
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if status := gjson.GetBytes(body, "status").String(); status != "healthy" {
		return errors.Errorf("server reported status %q", status)
	}
	return nil
}

// Initialize opens the server's database
func (c *Client) Initialize(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, apiPrefix+"/initialize", struct{}{})
	return err
}

// ImportFile imports a parquet file that is readable by the server
func (c *Client) ImportFile(ctx context.Context, path, tableName string) (bool, error) {
	body, err := c.do(ctx, http.MethodPost, apiPrefix+"/import", map[string]string{
		"path":  path,
		"table": tableName,
	})
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(body, "success").Bool(), nil
}

// ExecuteQuery runs SQL on the server
func (c *Client) ExecuteQuery(ctx context.Context, q string) (*types.QueryResult, error) {
	body, err := c.do(ctx, http.MethodPost, apiPrefix+"/query", map[string]string{"query": q})
	if err != nil {
		return nil, err
	}

	var result types.QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "decode query result")
	}
	return &result, nil
}

// ListTables lists the server's tables
func (c *Client) ListTables(ctx context.Context) ([]types.TableInfo, error) {
	var tables []types.TableInfo
	if err := c.getField(ctx, "/tables", "tables", &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// ListIndices lists the server's indices
func (c *Client) ListIndices(ctx context.Context) ([]types.IndexInfo, error) {
	var indices []types.IndexInfo
	if err := c.getField(ctx, "/indices", "indices", &indices); err != nil {
		return nil, err
	}
	return indices, nil
}

// CreateIndex creates an index on one column
func (c *Client) CreateIndex(ctx context.Context, tableName, columnName string) (bool, error) {
	body, err := c.do(ctx, http.MethodPost, apiPrefix+"/indices", map[string]string{
		"table":  tableName,
		"column": columnName,
	})
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(body, "success").Bool(), nil
}

// Info returns the server's database summary
func (c *Client) Info(ctx context.Context) (*types.DatabaseInfo, error) {
	body, err := c.do(ctx, http.MethodGet, apiPrefix+"/info", nil)
	if err != nil {
		return nil, err
	}

	var info types.DatabaseInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.Wrap(err, "decode info")
	}
	return &info, nil
}

// QueryHistory returns the server's query history, newest first
func (c *Client) QueryHistory(ctx context.Context) ([]query.QueryInfo, error) {
	var queries []query.QueryInfo
	if err := c.getField(ctx, "/queries", "queries", &queries); err != nil {
		return nil, err
	}
	return queries, nil
}

func (c *Client) getField(ctx context.Context, path, field string, out any) error {
	body, err := c.do(ctx, http.MethodGet, apiPrefix+path, nil)
	if err != nil {
		return err
	}

	raw := gjson.GetBytes(body, field)
	if !raw.Exists() || raw.Type == gjson.Null {
		return nil
	}
	if err := json.Unmarshal([]byte(raw.Raw), out); err != nil {
		return errors.Wrapf(err, "decode %s", field)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opt.BaseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.opt.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	c.opt.Logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, remoteError(resp.StatusCode, body)
	}
	return body, nil
}

// remoteError rebuilds the coded error sent by the server so that
// predicates such as service.IsImportError work on the client side.
func remoteError(status int, body []byte) error {
	codeStr := gjson.GetBytes(body, "error.code").String()
	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = http.StatusText(status)
	}

	code, err := coded.NewCode(codeStr)
	if err != nil {
		code = coded.CommonInternal
	}
	return coded.New(code, message, nil).AddContext("status", http.StatusText(status))
}
