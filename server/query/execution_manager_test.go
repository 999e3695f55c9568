package query

import (
	"sync"
	"testing"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionManager(t *testing.T) {
	em := NewExecutionManager(zerolog.Nop())
	require.NotNil(t, em)

	t.Run("StartQuery", func(t *testing.T) {
		id := em.StartQuery("SELECT * FROM test", "127.0.0.1")

		_, err := uuid.Parse(id)
		require.NoError(t, err)

		info, err := em.GetQueryInfo(id)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM test", info.Query)
		assert.Equal(t, QueryStatusRunning, info.Status)
		assert.Equal(t, "127.0.0.1", info.ClientAddr)
		assert.Nil(t, info.EndTime)
	})

	t.Run("CompleteQuery", func(t *testing.T) {
		id := em.StartQuery("SELECT * FROM test2", "")

		require.NoError(t, em.CompleteQuery(id, 100, nil))

		info, err := em.GetQueryInfo(id)
		require.NoError(t, err)
		assert.Equal(t, QueryStatusCompleted, info.Status)
		assert.Equal(t, int64(100), info.RowCount)
		assert.NotNil(t, info.EndTime)
		assert.NotNil(t, info.Duration)
	})

	t.Run("FailedQuery", func(t *testing.T) {
		id := em.StartQuery("SELEC", "")

		require.NoError(t, em.CompleteQuery(id, 0, assert.AnError))

		info, err := em.GetQueryInfo(id)
		require.NoError(t, err)
		assert.Equal(t, QueryStatusFailed, info.Status)
		assert.Equal(t, assert.AnError.Error(), info.Error)
	})

	t.Run("CompleteTwice", func(t *testing.T) {
		id := em.StartQuery("SELECT 1", "")
		require.NoError(t, em.CompleteQuery(id, 1, nil))

		err := em.CompleteQuery(id, 1, nil)
		assert.True(t, errors.HasCode(err, ErrQueryNotRunning))
	})

	t.Run("UnknownQuery", func(t *testing.T) {
		err := em.CompleteQuery("missing", 0, nil)
		assert.True(t, errors.HasCode(err, ErrQueryNotFound))

		_, err = em.GetQueryInfo("missing")
		assert.True(t, errors.HasCode(err, ErrQueryNotFound))
	})

	t.Run("Stats", func(t *testing.T) {
		stats := em.GetStats()
		assert.Equal(t, 5, stats.Total)
		assert.Equal(t, 1, stats.Running)
		assert.Equal(t, 3, stats.Completed)
		assert.Equal(t, 1, stats.Failed)
		assert.Len(t, em.ListRunningQueries(), 1)
	})
}

func TestListQueriesNewestFirst(t *testing.T) {
	em := NewExecutionManager(zerolog.Nop())

	first := em.StartQuery("SELECT 1", "")
	time.Sleep(2 * time.Millisecond)
	second := em.StartQuery("SELECT 2", "")

	list := em.ListQueries()
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)

	// snapshots are detached from the manager
	list[0].Status = QueryStatusFailed
	info, err := em.GetQueryInfo(second)
	require.NoError(t, err)
	assert.Equal(t, QueryStatusRunning, info.Status)
}

func TestCleanupCompletedQueries(t *testing.T) {
	em := NewExecutionManager(zerolog.Nop())

	done := em.StartQuery("SELECT 1", "")
	require.NoError(t, em.CompleteQuery(done, 1, nil))
	running := em.StartQuery("SELECT 2", "")

	assert.Equal(t, 0, em.CleanupCompletedQueries(time.Hour))

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, em.CleanupCompletedQueries(time.Millisecond))

	_, err := em.GetQueryInfo(done)
	assert.Error(t, err)
	_, err = em.GetQueryInfo(running)
	assert.NoError(t, err)
}

func TestConcurrentTracking(t *testing.T) {
	em := NewExecutionManager(zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := em.StartQuery("SELECT 1", "")
			_ = em.ListQueries()
			assert.NoError(t, em.CompleteQuery(id, 1, nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, Stats{Total: 50, Completed: 50}, em.GetStats())
}
