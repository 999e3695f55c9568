package explorer

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gear6io/quackview/server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() ([]types.TableInfo, []types.IndexInfo) {
	tables := []types.TableInfo{{
		Name:     "trips",
		RowCount: 37,
		Columns:  []types.ColumnInfo{{Name: "id", DataType: "BIGINT"}, {Name: "colX", DataType: "DOUBLE"}},
	}}
	indices := []types.IndexInfo{
		{IndexName: "idx_trips_colX", TableName: "trips", ColumnNames: []string{"colX"}},
		{IndexName: "idx_gone_id", TableName: "gone", ColumnNames: []string{"id"}},
	}
	return tables, indices
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSetCatalogToleratesStaleIndices(t *testing.T) {
	m := New()
	tables, indices := catalog()
	m.SetCatalog("db", tables, indices)

	require.Len(t, m.tree.Children, 2)
	assert.Equal(t, "trips", m.tree.Children[0].Name)
	assert.False(t, m.tree.Children[0].Missing)

	gone := m.tree.Children[1]
	assert.Equal(t, "gone", gone.Name)
	assert.True(t, gone.Missing)
	require.Len(t, gone.Children, 1)
	assert.Equal(t, NodeIndex, gone.Children[0].Kind)

	assert.Equal(t, []string{"trips"}, m.TableNames())
	assert.NotContains(t, m.View(), "No tables")
}

func TestNavigationAndQuickQuery(t *testing.T) {
	m := New()
	m.SetFocused(true)
	tables, indices := catalog()
	m.SetCatalog("db", tables, indices)

	m, _ = m.Update(key("j"))
	table, ok := m.SelectedTable()
	require.True(t, ok)
	assert.Equal(t, "trips", table)

	_, cmd := m.Update(key("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, QuickQueryMsg{Query: `SELECT * FROM "trips" LIMIT 100`}, cmd())

	// expand trips and move to colX
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))

	node, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "colX", node.Name)

	_, cmd = m.Update(key("i"))
	require.NotNil(t, cmd)
	assert.Equal(t, CreateIndexMsg{Table: "trips", Column: "colX"}, cmd())
}

func TestMissingTableIsNotQueryable(t *testing.T) {
	m := New()
	m.SetFocused(true)
	tables, indices := catalog()
	m.SetCatalog("db", tables, indices)

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))

	node, ok := m.Selected()
	require.True(t, ok)
	assert.True(t, node.Missing)

	_, cmd := m.Update(key("s"))
	assert.Nil(t, cmd)
}

func TestSetCatalogKeepsExpansion(t *testing.T) {
	m := New()
	m.SetFocused(true)
	tables, indices := catalog()
	m.SetCatalog("db", tables, indices)

	m, _ = m.Update(key("j"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.tree.Children[0].Expanded)

	m.SetCatalog("db", tables, nil)
	assert.True(t, m.tree.Children[0].Expanded)
	assert.Len(t, m.tree.Children, 1)
}
