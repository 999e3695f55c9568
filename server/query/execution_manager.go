package query

import (
	"sort"
	"sync"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QueryStatus represents the status of a query
type QueryStatus string

const (
	QueryStatusRunning   QueryStatus = "running"
	QueryStatusCompleted QueryStatus = "completed"
	QueryStatusFailed    QueryStatus = "failed"
)

// QueryInfo is a snapshot of one tracked query
type QueryInfo struct {
	ID         string         `json:"id"`
	Query      string         `json:"query"`
	Status     QueryStatus    `json:"status"`
	StartTime  time.Time      `json:"startTime"`
	EndTime    *time.Time     `json:"endTime,omitempty"`
	Duration   *time.Duration `json:"duration,omitempty"`
	ClientAddr string         `json:"clientAddr,omitempty"`
	Error      string         `json:"error,omitempty"`
	RowCount   int64          `json:"rowCount"`
}

// Stats counts tracked queries by status
type Stats struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// ExecutionManager keeps the history of queries run through the service.
// It observes queries and never cancels them.
type ExecutionManager struct {
	queries map[string]*QueryInfo
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewExecutionManager creates a new execution manager
func NewExecutionManager(logger zerolog.Logger) *ExecutionManager {
	return &ExecutionManager{
		queries: make(map[string]*QueryInfo),
		logger:  logger,
	}
}

// StartQuery starts tracking a query and returns its ID
func (em *ExecutionManager) StartQuery(query, clientAddr string) string {
	em.mu.Lock()
	defer em.mu.Unlock()

	id := uuid.NewString()
	em.queries[id] = &QueryInfo{
		ID:         id,
		Query:      query,
		Status:     QueryStatusRunning,
		StartTime:  time.Now(),
		ClientAddr: clientAddr,
	}

	em.logger.Debug().Str("query_id", id).Msg("Query started tracking")
	return id
}

// CompleteQuery marks a query as completed, or failed when err is set
func (em *ExecutionManager) CompleteQuery(queryID string, rowCount int64, err error) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	info, exists := em.queries[queryID]
	if !exists {
		return errors.New(ErrQueryNotFound, "query not found", nil).AddContext("query_id", queryID)
	}
	if info.Status != QueryStatusRunning {
		return errors.New(ErrQueryNotRunning, "query is not running", nil).
			AddContext("query_id", queryID).
			AddContext("status", string(info.Status))
	}

	now := time.Now()
	duration := now.Sub(info.StartTime)

	info.EndTime = &now
	info.Duration = &duration
	info.RowCount = rowCount

	if err != nil {
		info.Status = QueryStatusFailed
		info.Error = err.Error()
	} else {
		info.Status = QueryStatusCompleted
	}

	em.logger.Debug().
		Str("query_id", queryID).
		Str("status", string(info.Status)).
		Dur("duration", duration).
		Int64("row_count", rowCount).
		Msg("Query completed")

	return nil
}

// GetQueryInfo returns a copy of one query's record
func (em *ExecutionManager) GetQueryInfo(queryID string) (QueryInfo, error) {
	em.mu.RLock()
	defer em.mu.RUnlock()

	info, exists := em.queries[queryID]
	if !exists {
		return QueryInfo{}, errors.New(ErrQueryNotFound, "query not found", nil).AddContext("query_id", queryID)
	}
	return *info, nil
}

// ListQueries returns copies of all tracked queries, newest first
func (em *ExecutionManager) ListQueries() []QueryInfo {
	em.mu.RLock()
	defer em.mu.RUnlock()

	queries := make([]QueryInfo, 0, len(em.queries))
	for _, info := range em.queries {
		queries = append(queries, *info)
	}

	sort.Slice(queries, func(i, j int) bool {
		return queries[i].StartTime.After(queries[j].StartTime)
	})
	return queries
}

// ListRunningQueries returns only running queries
func (em *ExecutionManager) ListRunningQueries() []QueryInfo {
	var running []QueryInfo
	for _, q := range em.ListQueries() {
		if q.Status == QueryStatusRunning {
			running = append(running, q)
		}
	}
	return running
}

// CleanupCompletedQueries removes finished queries that ended more than
// maxAge ago
func (em *ExecutionManager) CleanupCompletedQueries(maxAge time.Duration) int {
	em.mu.Lock()
	defer em.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, info := range em.queries {
		if info.Status == QueryStatusRunning || info.EndTime == nil {
			continue
		}
		if info.EndTime.Before(cutoff) {
			delete(em.queries, id)
			removed++
		}
	}

	if removed > 0 {
		em.logger.Debug().Int("removed", removed).Msg("Cleaned up completed queries")
	}

	return removed
}

// GetStats returns statistics about queries
func (em *ExecutionManager) GetStats() Stats {
	em.mu.RLock()
	defer em.mu.RUnlock()

	var stats Stats
	for _, q := range em.queries {
		stats.Total++
		switch q.Status {
		case QueryStatusRunning:
			stats.Running++
		case QueryStatusCompleted:
			stats.Completed++
		case QueryStatusFailed:
			stats.Failed++
		}
	}
	return stats
}
