package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gear6io/quackview/tui/theme"
)

const hints = "Ctrl+E: Execute │ Tab: Switch pane │ o: Import │ ?: Help │ q: Quit"

// Model is the status bar. It keeps the last error until a later
// operation succeeds.
type Model struct {
	width      int
	ready      bool
	target     string
	activePane string
	message    string
	lastErr    error
}

// New creates a status bar
func New() Model {
	return Model{activePane: "explorer"}
}

// SetWidth updates the component width
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetReady shows whether the database is open and which one
func (m *Model) SetReady(ready bool, target string) {
	m.ready = ready
	m.target = target
}

// SetActivePane updates the displayed active pane name
func (m *Model) SetActivePane(pane string) {
	m.activePane = pane
}

// SetMessage sets a transient message and clears the last error
func (m *Model) SetMessage(msg string) {
	m.message = msg
	m.lastErr = nil
}

// SetError records the last failure
func (m *Model) SetError(err error) {
	m.lastErr = err
	m.message = ""
}

// LastError returns the error currently shown, if any
func (m Model) LastError() error {
	return m.lastErr
}

// View renders the status bar
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var indicator string
	if m.ready {
		indicator = lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("●") + " " + m.target
	} else {
		indicator = lipgloss.NewStyle().Foreground(theme.ColorError).Render("●") + " not initialized"
	}

	right := hints
	switch {
	case m.lastErr != nil:
		right = theme.StyleError.Render("Error: " + firstLine(m.lastErr.Error()))
	case m.message != "":
		right = m.message
	}

	padding := m.width - lipgloss.Width(indicator) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}

	return style.Render(indicator + strings.Repeat(" ", padding) + right)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
