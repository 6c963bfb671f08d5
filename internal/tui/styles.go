package tui

import "github.com/charmbracelet/lipgloss"

// Dracula palette
var (
	foreground = lipgloss.Color("#f8f8f2")
	selection  = lipgloss.Color("#44475a")
	comment    = lipgloss.Color("#6272a4")
	cyan       = lipgloss.Color("#8be9fd")
	green      = lipgloss.Color("#50fa7b")
	orange     = lipgloss.Color("#ffb86c")
	purple     = lipgloss.Color("#bd93f9")
	red        = lipgloss.Color("#ff5555")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(comment).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(foreground).
			Background(selection).
			Bold(true).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true)

	rowStyle = lipgloss.NewStyle().
			Foreground(foreground)

	selectedStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	dayStyle = lipgloss.NewStyle().
			Foreground(comment).
			Padding(0, 1)

	activeDayStyle = lipgloss.NewStyle().
			Foreground(orange).
			Bold(true).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(comment).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(comment)

	errorStyle = lipgloss.NewStyle().
			Foreground(red)
)
