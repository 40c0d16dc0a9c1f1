package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmOverwrite shows a warning box for path and asks for "y" on in.
// Any other answer, or EOF, declines.
func ConfirmOverwrite(in io.Reader, out io.Writer, path string, width int) bool {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{
		"",
		lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Render(fmt.Sprintf(" ⚠  %s already exists", path)),
		"",
		lipgloss.NewStyle().Foreground(TextColor).Render(" • Your settings will be replaced with the defaults"),
		"",
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	_, _ = fmt.Fprintln(out, box)
	_, _ = fmt.Fprint(out, lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render("Overwrite? [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Cancelled."))
	return false
}
