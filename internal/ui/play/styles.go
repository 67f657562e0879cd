package play

import "github.com/charmbracelet/lipgloss"

var (
	neonPink  = lipgloss.Color("#ff2079")
	neonCyan  = lipgloss.Color("#00b8ff")
	neonGreen = lipgloss.Color("#00ff9f")
	amber     = lipgloss.Color("#ffd300")
	dim       = lipgloss.Color("#6c6f85")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonCyan).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(neonPink).
			Bold(true)

	labelStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(dim)

	noticeStyle = lipgloss.NewStyle().
			Foreground(amber).
			Italic(true)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1e1e2e")).
			Background(neonPink).
			Bold(true).
			Padding(0, 1)

	mapStyle = lipgloss.NewStyle().Foreground(neonGreen)
)
