package theme

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorPrimary   = lipgloss.Color("214") // Duck orange
	ColorSecondary = lipgloss.Color("241")
	ColorSuccess   = lipgloss.Color("42")
	ColorError     = lipgloss.Color("196")
	ColorBorder    = lipgloss.Color("238")
	ColorMuted     = lipgloss.Color("245")
	ColorHighlight = lipgloss.Color("229")
)

var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleActiveBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleMuted    = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleError    = lipgloss.NewStyle().Foreground(ColorError)
	StyleSuccess  = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleSelected = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)
