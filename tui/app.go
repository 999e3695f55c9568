// Package tui is the terminal catalog browser and query console. It only
// talks to a service.Facade, local or remote.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge"
	"github.com/gear6io/quackview/server/service"
	"github.com/gear6io/quackview/server/types"
	"github.com/gear6io/quackview/tui/editor"
	"github.com/gear6io/quackview/tui/explorer"
	"github.com/gear6io/quackview/tui/results"
	"github.com/gear6io/quackview/tui/statusbar"
	"github.com/gear6io/quackview/tui/theme"
)

// UI error codes
var (
	ErrImportRejected = errors.MustNewCode("tui.import_rejected")
	ErrIndexRejected  = errors.MustNewCode("tui.index_rejected")
)

// Pane identifies a focusable area
type Pane int

const (
	PaneExplorer Pane = iota
	PaneEditor
	PaneResults
)

func (p Pane) String() string {
	switch p {
	case PaneExplorer:
		return "explorer"
	case PaneEditor:
		return "editor"
	case PaneResults:
		return "results"
	default:
		return "unknown"
	}
}

// Mode tracks whether the import prompt is open
type Mode int

const (
	ModeMain Mode = iota
	ModeImport
)

type (
	initializedMsg struct {
		err error
	}
	catalogLoadedMsg struct {
		tables  []types.TableInfo
		indices []types.IndexInfo
		err     error
	}
	queryExecutedMsg struct {
		result *types.QueryResult
		err    error
	}
	importedMsg struct {
		table string
		err   error
	}
	indexCreatedMsg struct {
		name string
		err  error
	}
)

// Model is the top-level bubbletea model
type Model struct {
	ctx         context.Context
	facade      service.Facade
	target      string
	explorer    explorer.Model
	editor      editor.Model
	results     results.Model
	statusbar   statusbar.Model
	importInput textinput.Model
	activePane  Pane
	mode        Mode
	ready       bool
	width       int
	height      int
	showHelp    bool
}

// NewModel creates the top-level model. target names the database or
// server in the status bar.
func NewModel(ctx context.Context, facade service.Facade, target string) Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/file.parquet [table]"
	ti.CharLimit = 1024
	ti.Width = 70

	m := Model{
		ctx:         ctx,
		facade:      facade,
		target:      target,
		explorer:    explorer.New(),
		editor:      editor.New(),
		results:     results.New(),
		statusbar:   statusbar.New(),
		importInput: ti,
	}
	m.explorer.SetLoading(true)
	m.setFocus(PaneExplorer)
	return m
}

// Run starts the UI and blocks until the user quits
func Run(ctx context.Context, facade service.Facade, target string) error {
	p := tea.NewProgram(NewModel(ctx, facade, target), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init opens the database
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initializeCmd(), m.editor.Init())
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == ModeImport {
			return m.updateImport(msg)
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m.updateMain(msg)

	case initializedMsg:
		if msg.err != nil {
			m.explorer.SetLoading(false)
			m.statusbar.SetError(msg.err)
			return m, nil
		}
		m.ready = true
		m.statusbar.SetReady(true, m.target)
		return m, m.loadCatalogCmd()

	case catalogLoadedMsg:
		if msg.err != nil {
			m.explorer.SetLoading(false)
			m.statusbar.SetError(msg.err)
			return m, nil
		}
		m.explorer.SetCatalog(m.target, msg.tables, msg.indices)
		m.editor.SetTableNames(m.explorer.TableNames())
		return m, nil

	case queryExecutedMsg:
		if msg.err != nil {
			m.results.SetError(msg.err)
			m.statusbar.SetError(msg.err)
			return m, nil
		}
		m.results.SetResult(msg.result)
		m.statusbar.SetMessage(fmt.Sprintf("%d row(s) in %.2f ms", msg.result.RowCount, msg.result.ExecutionTimeMs))
		return m, nil

	case importedMsg:
		if msg.err != nil {
			m.statusbar.SetError(msg.err)
			return m, nil
		}
		m.statusbar.SetMessage("Imported table " + msg.table)
		return m, m.loadCatalogCmd()

	case indexCreatedMsg:
		if msg.err != nil {
			m.statusbar.SetError(msg.err)
			return m, nil
		}
		m.statusbar.SetMessage("Created index " + msg.name)
		return m, m.loadCatalogCmd()

	case explorer.QuickQueryMsg:
		m.editor.SetQuery(msg.Query)
		return m, m.executeQueryCmd(msg.Query)

	case explorer.CreateIndexMsg:
		m.statusbar.SetMessage(fmt.Sprintf("Indexing %s.%s...", msg.Table, msg.Column))
		return m, m.createIndexCmd(msg.Table, msg.Column)

	case explorer.RefreshMsg:
		return m, m.loadCatalogCmd()

	case editor.ExecuteQueryMsg:
		return m, m.executeQueryCmd(msg.Query)
	}

	return m.updateComponents(msg)
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.activePane != PaneEditor {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "o":
			if m.ready {
				m.mode = ModeImport
				m.importInput.Reset()
				m.importInput.Focus()
			}
			return m, nil
		}
	}

	switch msg.String() {
	case "tab":
		if m.activePane == PaneEditor && (m.editor.CompletionActive() || m.editorWantsTab()) {
			return m.updateComponents(msg)
		}
		m.cyclePane(1)
		return m, nil
	case "shift+tab":
		m.cyclePane(-1)
		return m, nil
	}

	return m.updateComponents(msg)
}

// editorWantsTab reports whether Tab would complete a table name
func (m Model) editorWantsTab() bool {
	return len(editor.CompleteTable(m.editor.Value(), m.explorer.TableNames())) > 0
}

func (m Model) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeMain
		m.importInput.Blur()
		return m, nil
	case "enter":
		path, table := ParseImportInput(m.importInput.Value())
		if path == "" {
			return m, nil
		}
		m.mode = ModeMain
		m.importInput.Blur()
		m.statusbar.SetMessage("Importing " + path + "...")
		return m, m.importCmd(path, table)
	}

	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

// ParseImportInput splits "path [table]". The table defaults to the
// sanitized file stem.
func ParseImportInput(input string) (path, table string) {
	fields := strings.Fields(input)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], bridge.TableNameFromPath(fields[0])
	default:
		return fields[0], fields[1]
	}
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activePane {
	case PaneExplorer:
		m.explorer, cmd = m.explorer.Update(msg)
	case PaneEditor:
		m.editor, cmd = m.editor.Update(msg)
	case PaneResults:
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m *Model) cyclePane(step int) {
	next := (int(m.activePane) + step + 3) % 3
	m.setFocus(Pane(next))
}

func (m *Model) setFocus(pane Pane) {
	m.activePane = pane
	m.explorer.SetFocused(pane == PaneExplorer)
	m.editor.SetFocused(pane == PaneEditor)
	m.results.SetFocused(pane == PaneResults)
	m.statusbar.SetActivePane(pane.String())
}

func (m Model) explorerWidth() int {
	return min(max(m.width/4, 22), 40)
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	availHeight := m.height - 3
	rightWidth := m.width - m.explorerWidth() - 1
	editorHeight := max(availHeight*35/100, 5)

	m.explorer.SetSize(m.explorerWidth(), availHeight)
	m.editor.SetSize(rightWidth, editorHeight)
	m.results.SetSize(rightWidth, availHeight-editorHeight-2)
	m.statusbar.SetWidth(m.width)
}

// Async commands. The façade adds no timeout, so none is added here.

func (m Model) initializeCmd() tea.Cmd {
	ctx, facade := m.ctx, m.facade
	return func() tea.Msg {
		return initializedMsg{err: facade.Initialize(ctx)}
	}
}

func (m Model) loadCatalogCmd() tea.Cmd {
	ctx, facade := m.ctx, m.facade
	return func() tea.Msg {
		tables, err := facade.ListTables(ctx)
		if err != nil {
			return catalogLoadedMsg{err: err}
		}
		indices, err := facade.ListIndices(ctx)
		return catalogLoadedMsg{tables: tables, indices: indices, err: err}
	}
}

func (m *Model) executeQueryCmd(query string) tea.Cmd {
	m.results.SetLoading(true)
	m.statusbar.SetMessage("Executing query...")

	ctx, facade := m.ctx, m.facade
	return func() tea.Msg {
		result, err := facade.ExecuteQuery(ctx, query)
		return queryExecutedMsg{result: result, err: err}
	}
}

func (m Model) importCmd(path, table string) tea.Cmd {
	ctx, facade := m.ctx, m.facade
	return func() tea.Msg {
		ok, err := facade.ImportFile(ctx, path, table)
		if err == nil && !ok {
			err = errors.Newf(ErrImportRejected, "import into %s was rejected", table)
		}
		return importedMsg{table: table, err: err}
	}
}

func (m Model) createIndexCmd(table, column string) tea.Cmd {
	ctx, facade := m.ctx, m.facade
	return func() tea.Msg {
		ok, err := facade.CreateIndex(ctx, table, column)
		if err == nil && !ok {
			err = errors.Newf(ErrIndexRejected, "index on %s.%s was rejected", table, column)
		}
		return indexCreatedMsg{name: bridge.IndexName(table, column), err: err}
	}
}

// View renders the application
func (m Model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}

	main := m.viewMain()
	if m.mode == ModeImport {
		prompt := lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleTitle.Render("Import parquet file"),
			"  "+m.importInput.View(),
			theme.StyleMuted.Render("  Enter: Import │ Esc: Cancel"),
		)
		box := theme.StyleActiveBorder.Padding(0, 1).Render(prompt)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return main
}

func (m Model) viewMain() string {
	border := func(p Pane) lipgloss.Style {
		if m.activePane == p {
			return theme.StyleActiveBorder
		}
		return theme.StyleBorder
	}

	availHeight := m.height - 3
	rightWidth := m.width - m.explorerWidth() - 1
	editorHeight := max(availHeight*35/100, 5)

	explorerView := border(PaneExplorer).
		Width(m.explorerWidth() - 2).
		Height(availHeight).
		Render(m.explorer.View())

	editorView := border(PaneEditor).
		Width(rightWidth - 2).
		Height(editorHeight).
		Render(m.editor.View())

	resultsView := border(PaneResults).
		Width(rightWidth - 2).
		Height(max(availHeight-editorHeight-2, 1)).
		Render(m.results.View())

	mainArea := lipgloss.JoinHorizontal(lipgloss.Top,
		explorerView,
		lipgloss.JoinVertical(lipgloss.Left, editorView, resultsView),
	)

	return lipgloss.JoinVertical(lipgloss.Left, mainArea, m.statusbar.View())
}

func (m Model) viewHelp() string {
	section := lipgloss.NewStyle().Foreground(theme.ColorHighlight).Bold(true)
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(16)
	line := func(k, desc string) string {
		return "  " + key.Render(k) + theme.StyleMuted.Render(desc)
	}

	help := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleTitle.Render("quackview - Keyboard Shortcuts"),
		"",
		section.Render("Global"),
		line("q / Ctrl+C", "Quit"),
		line("Tab", "Switch pane"),
		line("Shift+Tab", "Switch pane (reverse)"),
		line("o", "Import a parquet file"),
		line("?", "Toggle this help"),
		"",
		section.Render("Catalog"),
		line("↑/k ↓/j", "Navigate"),
		line("Enter/→/l", "Expand"),
		line("←/h", "Collapse"),
		line("s", "SELECT * ... LIMIT 100"),
		line("d", "Count rows"),
		line("i", "Index the selected column"),
		line("r", "Reload catalog"),
		"",
		section.Render("Query"),
		line("Ctrl+E / F5", "Execute"),
		line("Ctrl+K", "Clear"),
		line("Ctrl+L", "Upper-case keywords"),
		line("Tab", "Complete table name"),
		"",
		section.Render("Results"),
		line("↑/k ↓/j", "Scroll rows"),
		line("←/h →/l", "Scroll columns"),
		line("PgUp/PgDn", "Page"),
		"",
		theme.StyleMuted.Render("Press any key to close"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, help)
}
