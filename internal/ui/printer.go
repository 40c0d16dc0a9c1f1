package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes styled CLI output. Commands build one with NewPrinter and
// print headers, result boxes and traces through it.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// WithWidth overrides the detected terminal width.
func (p *Printer) WithWidth(width int) *Printer {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	p.width = width
	return p
}

// Width returns the width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Detail) {
	p.Println(RenderHeader(title, command, params, p.width))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with hints
func (p *Printer) PrintError(title string, err error, hints ...string) {
	p.Println(NewFailureResult(title, err, hints...).SetWidth(p.width).Render())
}

// PrintTrace prints a key-by-key trace
func (p *Printer) PrintTrace(steps []TraceStep) {
	p.Println(RenderTrace(steps))
}

// PrintUtilization prints a labelled progress bar for a 0..1 fraction
func (p *Printer) PrintUtilization(label string, fraction float64) {
	p.Println(RenderUtilization(label, fraction, p.width))
}
