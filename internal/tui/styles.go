package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tapcalc/internal/version"
)

// AppName is shown in the header bar
const AppName = "TAPCALC"

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants
const (
	DisplayWidth = 28 // Inner width of the display box
	KeyWidth     = 5  // Width of one keypad cell
	HistorySize  = 5  // Evaluations shown above the display
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	AccentColor    = lipgloss.Color("#89B4FA") // Blue - operators
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor   = lipgloss.Color("#FFFFFF") // White
	SubtleColor = lipgloss.Color("#626262") // Gray
	PanelColor  = lipgloss.Color("#1A1A1A") // Dark gray
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// DisplayStyle frames the calculator display
	DisplayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Foreground(SecondaryColor).
			Bold(true).
			Width(DisplayWidth).
			Align(lipgloss.Right).
			Padding(0, 1)

	// DisplayErrorStyle is used while the display shows an error message
	DisplayErrorStyle = DisplayStyle.
				BorderForeground(ErrorColor).
				Foreground(ErrorColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	HistoryStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(DisplayWidth + 2).
			Align(lipgloss.Right)

	KeyStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PanelColor).
			Width(KeyWidth).
			Align(lipgloss.Center)

	OperatorKeyStyle = KeyStyle.
				Foreground(AccentColor).
				Bold(true)

	EvaluateKeyStyle = KeyStyle.
				Foreground(SecondaryColor).
				Bold(true)

	// PressedKeyStyle highlights the last key pressed
	PressedKeyStyle = KeyStyle.
			Foreground(PanelColor).
			Background(PrimaryColor).
			Bold(true)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(AccentColor).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			PaddingTop(1)

	// Discovery screen
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)
)

// RenderHeader renders "TAPCALC vX" with the version muted.
func RenderHeader() string {
	return HeaderStyle.Render(AppName) + " " + VersionStyle.Render("v"+AppVersion())
}
