package results

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gear6io/quackview/server/types"
	"github.com/gear6io/quackview/tui/theme"
)

const maxColumnWidth = 40

// Model is the result grid
type Model struct {
	result    *types.QueryResult
	err       error
	width     int
	height    int
	focused   bool
	scrollY   int
	scrollX   int
	loading   bool
	colWidths []int
}

// New creates a result grid
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

// Focused returns whether the grid has focus
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetResult shows a query result
func (m *Model) SetResult(r *types.QueryResult) {
	m.result = r
	m.err = nil
	m.scrollY = 0
	m.scrollX = 0
	m.loading = false
	m.colWidths = ColumnWidths(r)
}

// SetError shows a failure instead of a result
func (m *Model) SetError(err error) {
	m.err = err
	m.result = nil
	m.scrollY = 0
	m.scrollX = 0
	m.loading = false
}

// ColumnWidths sizes every column to its widest cell, capped
func ColumnWidths(r *types.QueryResult) []int {
	if r == nil || len(r.Columns) == 0 {
		return nil
	}

	widths := make([]int, len(r.Columns))
	for i, col := range r.Columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range r.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], 1), maxColumnWidth)
	}
	return widths
}

// Init returns the initial command (none)
func (m Model) Init() tea.Cmd {
	return nil
}

// Update scrolls while focused
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused || m.result == nil {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	lastRow := max(len(m.result.Rows)-1, 0)
	switch key.String() {
	case "up", "k":
		m.scrollY = max(m.scrollY-1, 0)
	case "down", "j":
		m.scrollY = min(m.scrollY+1, lastRow)
	case "pgup":
		m.scrollY = max(m.scrollY-m.height/2, 0)
	case "pgdown":
		m.scrollY = min(m.scrollY+m.height/2, lastRow)
	case "left", "h":
		m.scrollX = max(m.scrollX-1, 0)
	case "right", "l":
		m.scrollX = min(m.scrollX+1, max(len(m.result.Columns)-1, 0))
	}

	return m, nil
}

// View renders the grid
func (m Model) View() string {
	title := theme.StyleTitle.Render("Results")

	switch {
	case m.loading:
		return title + "\n" + theme.StyleMuted.Render("  Executing query...")
	case m.err != nil:
		return title + "\n" + theme.StyleError.Render("  Error: "+m.err.Error())
	case m.result == nil:
		return title + "\n" + theme.StyleMuted.Render("  Execute a query to see results")
	}

	stats := fmt.Sprintf("%d row(s) │ %.2f ms", m.result.RowCount, m.result.ExecutionTimeMs)
	header := title + "  " + theme.StyleMuted.Render(stats)

	if len(m.result.Columns) == 0 {
		return header + "\n" + theme.StyleSuccess.Render("  Query executed successfully")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderRow(m.result.Columns, true))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())

	visibleRows := max(m.height-4, 1)
	for i := m.scrollY; i < len(m.result.Rows) && i < m.scrollY+visibleRows; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(m.result.Rows[i], false))
	}

	return b.String()
}

func (m Model) renderRow(cells []string, isHeader bool) string {
	parts := make([]string, 0, len(cells))
	for i := m.scrollX; i < len(cells); i++ {
		width := 10
		if i < len(m.colWidths) {
			width = m.colWidths[i]
		}

		cell := Truncate(cells[i], width)
		if pad := width - lipgloss.Width(cell); pad > 0 {
			cell += strings.Repeat(" ", pad)
		}

		switch {
		case isHeader:
			cell = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(cell)
		case cells[i] == types.NullCell:
			cell = theme.StyleMuted.Render(cell)
		}
		parts = append(parts, cell)
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator() string {
	parts := make([]string, 0, len(m.colWidths))
	for i := m.scrollX; i < len(m.colWidths); i++ {
		parts = append(parts, strings.Repeat("─", m.colWidths[i]))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}

// Truncate shortens s to width display cells, ending with an ellipsis
func Truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
