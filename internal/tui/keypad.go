package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/tapcalc/internal/calc"
)

// keypadKey is one keypad cell: its label and the key name it sends.
type keypadKey struct {
	Label string
	Key   string
}

// keypadLayout mirrors the browser page.
var keypadLayout = [][]keypadKey{
	{{"C", calc.KeyEscape}, {"⌫", calc.KeyBackspace}, {"/", "/"}, {"×", "*"}},
	{{"7", "7"}, {"8", "8"}, {"9", "9"}, {"-", "-"}},
	{{"4", "4"}, {"5", "5"}, {"6", "6"}, {"+", "+"}},
	{{"1", "1"}, {"2", "2"}, {"3", "3"}, {"=", calc.KeyEquals}},
	{{"0", "0"}, {".", "."}},
}

// keypadCell maps a key name to the cell it highlights. Keys with the same
// action share a cell, so Enter lights "=" and x lights "×".
func keypadCell(key string) string {
	action, r := calc.ActionFor(key)
	switch action {
	case calc.ActionEvaluate:
		return calc.KeyEquals
	case calc.ActionBackspace:
		return calc.KeyBackspace
	case calc.ActionClear:
		return calc.KeyEscape
	case calc.ActionDigit, calc.ActionOperator:
		return string(r)
	}
	return ""
}

// renderKeypad draws the keypad, highlighting the cell for pressed.
func renderKeypad(pressed string) string {
	cell := keypadCell(pressed)

	rows := make([]string, 0, len(keypadLayout))
	for _, row := range keypadLayout {
		cells := make([]string, 0, len(row))
		for _, k := range row {
			style := KeyStyle
			action, _ := calc.ActionFor(k.Key)
			switch action {
			case calc.ActionOperator:
				style = OperatorKeyStyle
			case calc.ActionEvaluate:
				style = EvaluateKeyStyle
			}
			if cell != "" && k.Key == cell {
				style = PressedKeyStyle
			}
			cells = append(cells, style.Render(k.Label))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
