package service

import (
	"context"

	"github.com/gear6io/quackview/server/journal/records"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/types"
)

// Facade is everything a consumer needs from the data layer. Service
// implements it in process and pkg/sdk implements it over HTTP.
type Facade interface {
	Initialize(ctx context.Context) error
	ImportFile(ctx context.Context, path, tableName string) (bool, error)
	ExecuteQuery(ctx context.Context, query string) (*types.QueryResult, error)
	ListTables(ctx context.Context) ([]types.TableInfo, error)
	ListIndices(ctx context.Context) ([]types.IndexInfo, error)
	CreateIndex(ctx context.Context, tableName, columnName string) (bool, error)
	Info(ctx context.Context) (*types.DatabaseInfo, error)
	QueryHistory(ctx context.Context) ([]query.QueryInfo, error)
}

// Journal receives one entry per import and index creation
type Journal interface {
	Record(ctx context.Context, entry *records.Entry) error
	Close() error
}

type clientAddrKey struct{}

// WithClientAddr tags ctx with the address of the caller for query history
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientAddrKey{}, addr)
}

func clientAddrFrom(ctx context.Context) string {
	addr, _ := ctx.Value(clientAddrKey{}).(string)
	return addr
}
