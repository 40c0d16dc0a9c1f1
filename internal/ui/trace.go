package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// TraceStep is one replayed key and the display after it.
type TraceStep struct {
	Key     string
	Action  string // empty when the key has no binding
	Display string
	Err     error // evaluation failure, if any
}

// RenderTrace renders one line per step:
//
//	●  7           7
//	●  Enter       42
//	·  F1          (ignored)
func RenderTrace(steps []TraceStep) string {
	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		var marker, display string
		switch {
		case s.Action == "":
			marker = TraceIgnoredStyle.Render(IgnoredMarker)
			display = TraceIgnoredStyle.Render("(ignored)")
		case s.Err != nil:
			marker = TraceErrorStyle.Render(FailureMarker)
			display = TraceErrorStyle.Render(quoteEmpty(s.Display))
		default:
			marker = lipgloss.NewStyle().Foreground(SuccessColor).Render(ActionMarker)
			display = TraceDisplayStyle.Render(quoteEmpty(s.Display))
		}
		lines = append(lines, fmt.Sprintf(" %s  %s %s", marker, TraceKeyStyle.Render(s.Key), display))
	}
	return strings.Join(lines, "\n")
}

// RenderUtilization renders "label  [bar] 97%" for a fraction in [0, 1].
func RenderUtilization(label string, fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	barWidth := width - len(label) - 12
	if barWidth < 10 {
		barWidth = 10
	}
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return " " + ResultKeyStyle.Render(label) + " " + bar.ViewAs(fraction)
}

func quoteEmpty(s string) string {
	if s == "" {
		return `""`
	}
	return s
}
