package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("4")   // Blue
	ColorSecondary = lipgloss.Color("8")   // Gray
	ColorSuccess   = lipgloss.Color("2")   // Green
	ColorWarning   = lipgloss.Color("3")   // Yellow
	ColorDanger    = lipgloss.Color("1")   // Red
	ColorMuted     = lipgloss.Color("245") // Light gray
	ColorHighlight = lipgloss.Color("6")   // Cyan
	ColorText      = lipgloss.Color("252") // Light text
)

// Styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Branch names: green for the checked out branch, yellow otherwise.
	CurrentBranchStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// Commit counts
	LocalStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	MissingStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	ModifiedStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	RemoteStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	DiffbaseStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Faint(true)

	DimStyle = lipgloss.NewStyle().
			Faint(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	WarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)
)

// Symbols
const (
	SymbolCursor    = "›"
	SymbolCurrent   = "*"
	SymbolChecked   = "[x]"
	SymbolUnchecked = "[ ]"
	SymbolDivider   = "─"
)
