package explorer

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gear6io/quackview/server/types"
	"github.com/gear6io/quackview/tui/theme"
)

// NodeKind identifies the type of a tree node
type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeTable
	NodeColumn
	NodeIndex
)

// TreeNode is one line of the catalog tree
type TreeNode struct {
	Kind     NodeKind
	Name     string
	Children []*TreeNode
	Expanded bool

	Table    string // owning table for columns and indices
	DataType string
	RowCount int64
	Missing  bool // indexed table absent from the table snapshot
}

type flatItem struct {
	node  *TreeNode
	depth int
}

// QuickQueryMsg asks the app to run a query built from the selection
type QuickQueryMsg struct {
	Query string
}

// CreateIndexMsg asks the app to index the selected column
type CreateIndexMsg struct {
	Table  string
	Column string
}

// RefreshMsg asks the app to reload the catalog
type RefreshMsg struct{}

// Model is the catalog browser
type Model struct {
	tree    *TreeNode
	items   []flatItem
	cursor  int
	width   int
	height  int
	focused bool
	loading bool
}

// New creates an explorer
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the explorer has focus
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetCatalog rebuilds the tree from one table and one index snapshot.
// Indices whose table is not in tables are listed under a node marked
// missing instead of being dropped. Expanded tables stay expanded.
func (m *Model) SetCatalog(name string, tables []types.TableInfo, indices []types.IndexInfo) {
	expanded := make(map[string]bool)
	if m.tree != nil {
		for _, t := range m.tree.Children {
			expanded[t.Name] = t.Expanded
		}
	}

	root := &TreeNode{Kind: NodeDatabase, Name: name, Expanded: true}
	byName := make(map[string]*TreeNode, len(tables))

	for _, t := range tables {
		node := &TreeNode{
			Kind:     NodeTable,
			Name:     t.Name,
			RowCount: t.RowCount,
			Expanded: expanded[t.Name],
		}
		for _, c := range t.Columns {
			node.Children = append(node.Children, &TreeNode{
				Kind:     NodeColumn,
				Name:     c.Name,
				Table:    t.Name,
				DataType: c.DataType,
			})
		}
		byName[t.Name] = node
		root.Children = append(root.Children, node)
	}

	grouped := types.IndicesByTable(indices)
	orphans := make([]string, 0)
	for table := range grouped {
		if _, ok := byName[table]; !ok {
			orphans = append(orphans, table)
		}
	}
	sort.Strings(orphans)
	for _, table := range orphans {
		node := &TreeNode{Kind: NodeTable, Name: table, Missing: true, Expanded: expanded[table]}
		byName[table] = node
		root.Children = append(root.Children, node)
	}

	for table, idxs := range grouped {
		parent := byName[table]
		for _, idx := range idxs {
			parent.Children = append(parent.Children, &TreeNode{
				Kind:     NodeIndex,
				Name:     idx.IndexName,
				Table:    table,
				DataType: strings.Join(idx.ColumnNames, ", "),
			})
		}
	}

	m.tree = root
	m.flatten()
	m.loading = false
}

// TableNames returns the names of the tables currently listed
func (m Model) TableNames() []string {
	if m.tree == nil {
		return nil
	}
	names := make([]string, 0, len(m.tree.Children))
	for _, t := range m.tree.Children {
		if !t.Missing {
			names = append(names, t.Name)
		}
	}
	return names
}

// Selected returns the node under the cursor
func (m Model) Selected() (*TreeNode, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil, false
	}
	return m.items[m.cursor].node, true
}

// SelectedTable returns the table of the node under the cursor
func (m Model) SelectedTable() (string, bool) {
	node, ok := m.Selected()
	if !ok {
		return "", false
	}
	switch node.Kind {
	case NodeTable:
		if node.Missing {
			return "", false
		}
		return node.Name, true
	case NodeColumn:
		return node.Table, true
	}
	return "", false
}

func (m *Model) flatten() {
	m.items = nil
	if m.tree != nil {
		m.flattenNode(m.tree, 0)
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m *Model) flattenNode(node *TreeNode, depth int) {
	m.items = append(m.items, flatItem{node: node, depth: depth})
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child, depth+1)
		}
	}
}

// Init returns the initial command (none)
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles keys while focused
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", "right", "l":
		m.setExpanded(true)
	case "left", "h":
		m.setExpanded(false)
	case "s":
		if table, ok := m.SelectedTable(); ok {
			return m, emit(QuickQueryMsg{Query: fmt.Sprintf("SELECT * FROM %s LIMIT 100", quote(table))})
		}
	case "d":
		if table, ok := m.SelectedTable(); ok {
			return m, emit(QuickQueryMsg{Query: fmt.Sprintf("SELECT COUNT(*) FROM %s", quote(table))})
		}
	case "i":
		if node, ok := m.Selected(); ok && node.Kind == NodeColumn {
			return m, emit(CreateIndexMsg{Table: node.Table, Column: node.Name})
		}
	case "r":
		return m, emit(RefreshMsg{})
	}

	return m, nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (m *Model) setExpanded(expanded bool) {
	node, ok := m.Selected()
	if !ok || len(node.Children) == 0 || node.Expanded == expanded {
		return
	}
	node.Expanded = expanded
	m.flatten()
}

// View renders the explorer
func (m Model) View() string {
	title := theme.StyleTitle.Render("Catalog")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}
	if m.tree == nil {
		return title + "\n" + theme.StyleMuted.Render("  Not initialized")
	}
	if len(m.tree.Children) == 0 {
		return title + "\n" + theme.StyleMuted.Render("  No tables. Press o to import")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	visibleHeight := m.height - 2
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	scrollOffset := 0
	if m.cursor >= visibleHeight {
		scrollOffset = m.cursor - visibleHeight + 1
	}

	for i := scrollOffset; i < len(m.items) && i < scrollOffset+visibleHeight; i++ {
		b.WriteString(m.renderNode(m.items[i], i == m.cursor))
		if i < scrollOffset+visibleHeight-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderNode(item flatItem, selected bool) string {
	node := item.node
	indent := strings.Repeat("  ", item.depth)

	icon := "  "
	if len(node.Children) > 0 {
		icon = "▶ "
		if node.Expanded {
			icon = "▼ "
		}
	}

	name := node.Name
	switch node.Kind {
	case NodeTable:
		if node.Missing {
			name += " " + theme.StyleError.Render("(missing)")
		} else {
			name += " " + theme.StyleMuted.Render(fmt.Sprintf("%d rows", node.RowCount))
		}
	case NodeColumn:
		name += " " + theme.StyleMuted.Render(node.DataType)
	case NodeIndex:
		name = "⚡" + name + " " + theme.StyleMuted.Render("("+node.DataType+")")
	}

	line := indent + icon + name
	if m.width > 4 && lipgloss.Width(line) > m.width-2 {
		runes := []rune(line)
		for len(runes) > 0 && lipgloss.Width(string(runes)) > m.width-4 {
			runes = runes[:len(runes)-1]
		}
		line = string(runes) + ".."
	}

	if selected {
		return theme.StyleSelected.Render(line)
	}
	return line
}
