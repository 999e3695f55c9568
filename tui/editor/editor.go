package editor

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gear6io/quackview/tui/theme"
)

// ExecuteQueryMsg is sent when the user runs the editor content
type ExecuteQueryMsg struct {
	Query string
}

var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"insert": true, "into": true, "update": true, "delete": true,
	"create": true, "drop": true, "alter": true, "table": true,
	"index": true, "join": true, "inner": true, "outer": true,
	"left": true, "right": true, "on": true, "using": true,
	"not": true, "in": true, "is": true, "null": true, "like": true,
	"order": true, "by": true, "group": true, "having": true,
	"limit": true, "offset": true, "as": true, "distinct": true,
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"between": true, "case": true, "when": true, "then": true,
	"else": true, "end": true, "with": true, "union": true, "all": true,
	"asc": true, "desc": true, "describe": true, "show": true,
	"tables": true, "pivot": true, "unpivot": true, "qualify": true,
	"summarize": true, "true": true, "false": true, "ilike": true,
}

// Model is the SQL editor
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool

	tableNames  []string
	completing  bool
	completions []string
	compIndex   int
}

// New creates an editor
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "Enter SQL query... (Ctrl+E to run)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{textarea: ta}
}

// SetSize updates the component dimensions
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(max(w-2, 1))
	m.textarea.SetHeight(max(h-2, 1))
}

// SetFocused sets the focus state
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Focused returns whether the editor has focus
func (m Model) Focused() bool {
	return m.focused
}

// Value returns the editor content
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetQuery replaces the editor content
func (m *Model) SetQuery(query string) {
	m.textarea.SetValue(query)
}

// SetTableNames sets the candidates for Tab completion
func (m *Model) SetTableNames(names []string) {
	m.tableNames = names
}

// CompletionActive reports whether Tab is cycling completions
func (m Model) CompletionActive() bool {
	return m.completing
}

// Clear empties the editor
func (m *Model) Clear() {
	m.textarea.Reset()
	m.cancelCompletion()
}

// Init returns the cursor blink command
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles keys while focused
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+e", "f5":
			query := strings.TrimSpace(m.textarea.Value())
			if query == "" {
				return m, nil
			}
			m.cancelCompletion()
			return m, func() tea.Msg { return ExecuteQueryMsg{Query: query} }
		case "ctrl+k":
			m.Clear()
			return m, nil
		case "ctrl+l":
			m.textarea.SetValue(FormatKeywords(m.textarea.Value()))
			return m, nil
		case "tab":
			if m.tryCompletion() {
				return m, nil
			}
		case "esc":
			if m.completing {
				m.cancelCompletion()
				return m, nil
			}
		default:
			m.cancelCompletion()
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// FormatKeywords upper-cases SQL keywords outside quoted strings and
// identifiers
func FormatKeywords(val string) string {
	var result, word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		if sqlKeywords[strings.ToLower(w)] {
			w = strings.ToUpper(w)
		}
		result.WriteString(w)
		word.Reset()
	}

	var quote rune
	for _, ch := range val {
		switch {
		case quote != 0:
			result.WriteRune(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			flush()
			quote = ch
			result.WriteRune(ch)
		case unicode.IsLetter(ch) || ch == '_':
			word.WriteRune(ch)
		default:
			flush()
			result.WriteRune(ch)
		}
	}
	flush()

	return result.String()
}

func (m *Model) tryCompletion() bool {
	if m.completing && len(m.completions) > 0 {
		m.compIndex = (m.compIndex + 1) % len(m.completions)
		m.applyCompletion()
		return true
	}

	matches := CompleteTable(m.textarea.Value(), m.tableNames)
	if len(matches) == 0 {
		return false
	}

	m.completing = true
	m.completions = matches
	m.compIndex = 0
	m.applyCompletion()
	return true
}

// CompleteTable returns the table names that extend the last word of text
// when it follows FROM, JOIN, TABLE or INTO
func CompleteTable(text string, tableNames []string) []string {
	partial := lastWord(text)
	if partial == "" {
		return nil
	}

	upper := strings.ToUpper(text)
	if !strings.Contains(upper, "FROM") && !strings.Contains(upper, "JOIN") &&
		!strings.Contains(upper, "TABLE") && !strings.Contains(upper, "INTO") {
		return nil
	}

	lower := strings.ToLower(partial)
	var matches []string
	for _, name := range tableNames {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			matches = append(matches, name)
		}
	}
	return matches
}

func (m *Model) applyCompletion() {
	val := m.textarea.Value()
	base := strings.TrimSuffix(val, lastWord(val))
	m.textarea.SetValue(base + m.completions[m.compIndex])
}

func (m *Model) cancelCompletion() {
	m.completing = false
	m.completions = nil
	m.compIndex = 0
}

func lastWord(s string) string {
	i := len(s) - 1
	for i >= 0 && isIdentChar(rune(s[i])) {
		i--
	}
	return s[i+1:]
}

func isIdentChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_'
}

// View renders the editor
func (m Model) View() string {
	title := theme.StyleTitle.Render("Query")

	var hint string
	if m.completing && len(m.completions) > 1 {
		parts := make([]string, len(m.completions))
		for i, c := range m.completions {
			if i == m.compIndex {
				parts[i] = theme.StyleSelected.Render(c)
			} else {
				parts[i] = theme.StyleMuted.Render(c)
			}
		}
		hint = "\n " + theme.StyleMuted.Render("Tab: ") + strings.Join(parts, " │ ")
	}

	return title + "\n" + m.textarea.View() + hint
}
