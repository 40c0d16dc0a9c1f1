package ui

import (
	"fmt"
	"strings"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
)

// Detail is one key/value line in a result box.
type Detail struct {
	Key   string
	Value string
}

// Result represents a result box
type Result struct {
	Type    ResultType
	Title   string   // e.g., "12×3" or "Configuration saved"
	Details []Detail // Rendered in order
	Error   error    // Error (for failure results)
	Hints   []string // Suggestions (for failure results)
	Width   int      // Terminal width
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Detail) *Result {
	return &Result{
		Type:    ResultSuccess,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, hints ...string) *Result {
	return &Result{
		Type:  ResultFailure,
		Title: title,
		Error: err,
		Hints: hints,
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail line
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Detail{Key: key, Value: value})
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	if r.Type == ResultFailure {
		return r.renderFailure(width)
	}
	return r.renderSuccess(width)
}

func (r *Result) renderSuccess(width int) string {
	lines := []string{
		"",
		SuccessTitleStyle.Render(fmt.Sprintf(" %s  %s", SuccessMarker, r.Title)),
		"",
	}
	lines = append(lines, renderDetails(r.Details)...)
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}
	return SuccessBoxStyle(width).Render(strings.Join(lines, "\n"))
}

func (r *Result) renderFailure(width int) string {
	lines := []string{
		"",
		ErrorTitleStyle.Render(fmt.Sprintf(" %s  %s", FailureMarker, r.Title)),
		"",
	}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render(" "+r.Error.Error()), "")
	}
	lines = append(lines, renderDetails(r.Details)...)

	if len(r.Hints) > 0 {
		hintLines := []string{HintTitleStyle.Render("Hints:"), ""}
		for _, hint := range r.Hints {
			hintLines = append(hintLines, HintItemStyle.Render("  • "+hint))
		}
		lines = append(lines, HintBoxStyle(width).Render(strings.Join(hintLines, "\n")), "")
	}

	return ErrorBoxStyle(width).Render(strings.Join(lines, "\n"))
}

func renderDetails(details []Detail) []string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, ResultKeyStyle.Render(" "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	return lines
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, params []Detail, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{
		HeaderTitleStyle.Render(strings.ToUpper(title)),
		HeaderCommandStyle.Render(command),
	}
	if len(params) > 0 {
		lines = append(lines, RenderHorizontalDivider(width-6, "─"))
		for _, p := range params {
			lines = append(lines, HeaderParamKeyStyle.Render(p.Key+":")+" "+HeaderParamValueStyle.Render(p.Value))
		}
	}
	return HeaderBorderStyle(width).Render(strings.Join(lines, "\n"))
}
