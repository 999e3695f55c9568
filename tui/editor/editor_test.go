package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKeywords(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"select * from trips", "SELECT * FROM trips"},
		{"select 'from' as x", "SELECT 'from' AS x"},
		{`select "order" from t limit 5`, `SELECT "order" FROM t LIMIT 5`},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatKeywords(tt.in))
	}
}

func TestCompleteTable(t *testing.T) {
	names := []string{"trips", "trip_stats", "users"}

	assert.Equal(t, []string{"trips", "trip_stats"}, CompleteTable("SELECT * FROM tri", names))
	assert.Equal(t, []string{"users"}, CompleteTable("select * from trips join U", names))
	assert.Nil(t, CompleteTable("SELECT tri", names))
	assert.Nil(t, CompleteTable("SELECT * FROM ", names))
}

func TestExecuteEmitsQuery(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetQuery("  SELECT 1  ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	require.NotNil(t, cmd)
	assert.Equal(t, ExecuteQueryMsg{Query: "SELECT 1"}, cmd())
}

func TestTabCyclesCompletions(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTableNames([]string{"trips", "trip_stats"})
	m.SetQuery("SELECT * FROM tri")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.CompletionActive())
	assert.Equal(t, "SELECT * FROM trips", m.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "SELECT * FROM trip_stats", m.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.CompletionActive())
}
