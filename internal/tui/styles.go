// ABOUTME: Lipgloss palette and styles for the terminal views.
// ABOUTME: Zone and phase colours are shared by the flow timer and charts.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Align(lipgloss.Center)

	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)
)

// zoneStyles is indexed by flow.Zone.Index.
var zoneStyles = []lipgloss.Style{warningStyle, successStyle, accentStyle}
