package results

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gear6io/quackview/server/types"
	"github.com/stretchr/testify/assert"
)

func TestColumnWidths(t *testing.T) {
	r := &types.QueryResult{
		Columns: []string{"id", "description"},
		Rows:    [][]string{{"12345", strings.Repeat("x", 80)}},
	}
	assert.Equal(t, []int{5, maxColumnWidth}, ColumnWidths(r))
	assert.Nil(t, ColumnWidths(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abcdef", 3))
	assert.Equal(t, "…", Truncate("abcdef", 1))
}

func TestViewStates(t *testing.T) {
	m := New()
	m.SetSize(80, 20)
	assert.Contains(t, m.View(), "Execute a query")

	m.SetError(errors.New("boom"))
	assert.Contains(t, m.View(), "Error: boom")

	m.SetResult(&types.QueryResult{
		Columns:         []string{"id", "name"},
		Rows:            [][]string{{"1", "a"}, {"2", types.NullCell}},
		RowCount:        2,
		ExecutionTimeMs: 0.5,
	})
	view := m.View()
	assert.Contains(t, view, "2 row(s)")
	assert.Contains(t, view, "NULL")
}

func TestScrollStaysInBounds(t *testing.T) {
	m := New()
	m.SetSize(80, 20)
	m.SetFocused(true)
	m.SetResult(&types.QueryResult{Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}, RowCount: 2})

	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 1, m.scrollY)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, 0, m.scrollY)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, m.scrollX)
}
