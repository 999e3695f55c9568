package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gear6io/quackview/server/config"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.LoadDefaultConfig()
	cfg.Storage.DataPath = t.TempDir()
	cfg.HTTP.Enabled = false
	return cfg
}

func TestEngineOptions(t *testing.T) {
	cfg := config.LoadDefaultConfig()
	cfg.Engine.MaxMemoryMB = 512
	cfg.Engine.Threads = 2
	cfg.Import.ReplaceExisting = true

	opts := EngineOptions(cfg)
	assert.Equal(t, 512, opts.MaxMemoryMB)
	assert.Equal(t, 2, opts.Threads)
	assert.Equal(t, cfg.Engine.StatsWorkers, opts.StatsWorkers)
	assert.True(t, opts.ReplaceExisting)
}

func TestServerLifecycle(t *testing.T) {
	cfg := testConfig(t)

	srv, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, service.StateUninitialized, srv.Service().State())

	ctx := context.Background()
	require.NoError(t, srv.Start(ctx))
	assert.Equal(t, service.StateReady, srv.Service().State())

	dbPath := filepath.Join(cfg.Storage.DataPath, config.DefaultDBFile)
	assert.Equal(t, dbPath, srv.Service().DatabasePath())
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	_, err = srv.Service().ExecuteQuery(ctx, "SELECT 1")
	require.NoError(t, err)

	status := srv.GetStatus()
	assert.Equal(t, query.Stats{Total: 1, Completed: 1}, status["queries"])
	assert.Equal(t, "ready", status["state"])
	assert.Equal(t, false, status["http_enabled"])

	require.NoError(t, srv.Shutdown(ctx))
	assert.Equal(t, service.StateUninitialized, srv.Service().State())
}
