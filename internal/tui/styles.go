package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#00ff41")
	danger = lipgloss.Color("#ff3b30")
	gray   = lipgloss.Color("#86868b")

	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(gray)
	sectionStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	counterStyle  = lipgloss.NewStyle().Foreground(gray)
	questionStyle = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(gray).Italic(true)
	timerStyle    = lipgloss.NewStyle().Foreground(danger)
	interimStyle  = lipgloss.NewStyle().Foreground(gray)
	infoStyle     = lipgloss.NewStyle().Foreground(accent)
	errorStyle    = lipgloss.NewStyle().Foreground(danger)
	recordStyle   = lipgloss.NewStyle().Foreground(danger).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3a3a3c")).
			Padding(1, 2)
)
