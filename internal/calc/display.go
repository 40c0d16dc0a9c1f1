package calc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/muurk/tapcalc/internal/expr"
)

// MultiplySign is the glyph shown for multiplication.
const MultiplySign = '×'

// State is the coarse state of a display.
type State string

const (
	StateEmpty    State = "empty"
	StateEntering State = "entering"
	StateError    State = "error"
)

// DivisionCheck selects how division by zero is detected.
type DivisionCheck string

const (
	// DivisionCheckSubstring flags any "/0" in the expression before
	// evaluating, which also catches divisors like 10 or 0.5.
	DivisionCheckSubstring DivisionCheck = "substring"
	// DivisionCheckStrict flags only a divisor that evaluates to zero.
	DivisionCheckStrict DivisionCheck = "strict"
)

// ParseDivisionCheck validates a configured division check name.
func ParseDivisionCheck(s string) (DivisionCheck, error) {
	switch DivisionCheck(strings.ToLower(strings.TrimSpace(s))) {
	case "", DivisionCheckSubstring:
		return DivisionCheckSubstring, nil
	case DivisionCheckStrict:
		return DivisionCheckStrict, nil
	}
	return "", fmt.Errorf("invalid division check %q (expected substring or strict)", s)
}

// Options configures evaluation.
type Options struct {
	Precision     int
	DivisionCheck DivisionCheck
}

// DefaultOptions returns the browser calculator's behavior.
func DefaultOptions() Options {
	return Options{
		Precision:     DefaultPrecision,
		DivisionCheck: DivisionCheckSubstring,
	}
}

// Display is the calculator's text buffer and entry state.
// A Display is not safe for concurrent use.
type Display struct {
	text            string
	lastWasOperator bool
	opts            Options
}

// NewDisplay returns an empty display.
func NewDisplay(opts Options) *Display {
	if opts.DivisionCheck == "" {
		opts.DivisionCheck = DivisionCheckSubstring
	}
	return &Display{opts: opts}
}

// Text returns the current display text.
func (d *Display) Text() string {
	return d.text
}

// LastWasOperator reports whether the last appended character was an operator.
func (d *Display) LastWasOperator() bool {
	return d.lastWasOperator
}

// Options returns the display's evaluation options.
func (d *Display) Options() Options {
	return d.opts
}

// State reports whether the display is empty, holds an entry, or shows an
// error message.
func (d *Display) State() State {
	switch {
	case d.text == "":
		return StateEmpty
	case strings.HasPrefix(d.text, InvalidExpressionText):
		return StateError
	default:
		return StateEntering
	}
}

// AppendDigit appends a digit or decimal point.
//
// A lone "0" is replaced rather than extended, and a second '.' in the
// current number is dropped.
func (d *Display) AppendDigit(ch rune) error {
	if !isDigitKey(ch) {
		return fmt.Errorf("%w: %q is not a digit", ErrUnsupportedKey, ch)
	}

	switch {
	case d.text == "0" && ch != '.':
		d.text = string(ch)
	case ch == '.' && strings.ContainsRune(d.currentNumber(), '.'):
		// already has a decimal point
	default:
		d.text += string(ch)
	}
	d.lastWasOperator = false
	return nil
}

// AppendOperator appends an arithmetic operator. '*' and 'x' are shown as
// '×'. An operator typed right after another one replaces it.
func (d *Display) AppendOperator(op rune) error {
	op, ok := displayOperator(op)
	if !ok {
		return fmt.Errorf("%w: %q is not an operator", ErrUnsupportedKey, op)
	}

	if d.lastWasOperator {
		_, size := utf8.DecodeLastRuneInString(d.text)
		d.text = d.text[:len(d.text)-size] + string(op)
		return nil
	}
	d.text += string(op)
	d.lastWasOperator = true
	return nil
}

// Clear empties the display.
func (d *Display) Clear() {
	d.text = ""
	d.lastWasOperator = false
}

// Backspace removes the last character. An emptied display shows "0".
func (d *Display) Backspace() {
	_, size := utf8.DecodeLastRuneInString(d.text)
	d.text = d.text[:len(d.text)-size]
	if d.text == "" {
		d.text = "0"
	}
	d.lastWasOperator = false
}

// Evaluate replaces the display with the value of its expression.
//
// On failure the display shows the error's Display() text and the *Error
// is returned. The operator flag is cleared on every path.
func (d *Display) Evaluate() error {
	defer func() { d.lastWasOperator = false }()

	expression := MachineExpression(d.text)

	if d.opts.DivisionCheck != DivisionCheckStrict && strings.Contains(expression, "/0") {
		return d.fail(&Error{Kind: KindDivisionByZero, Expression: expression})
	}

	evaluator := expr.Evaluator{StrictDivision: d.opts.DivisionCheck == DivisionCheckStrict}
	v, err := evaluator.Eval(expression)
	if err != nil {
		kind := KindInvalidExpression
		if errors.Is(err, expr.ErrDivisionByZero) {
			kind = KindDivisionByZero
		}
		return d.fail(&Error{Kind: kind, Expression: expression, Err: err})
	}

	d.text = FormatResult(v, d.opts.Precision)
	return nil
}

func (d *Display) fail(err *Error) error {
	d.text = err.Display()
	return err
}

// currentNumber returns the characters after the last operator.
func (d *Display) currentNumber() string {
	i := strings.LastIndexFunc(d.text, isOperatorRune)
	if i < 0 {
		return d.text
	}
	_, size := utf8.DecodeRuneInString(d.text[i:])
	return d.text[i+size:]
}

// MachineExpression converts display text to evaluator input.
func MachineExpression(text string) string {
	return strings.ReplaceAll(text, string(MultiplySign), "*")
}

func displayOperator(op rune) (rune, bool) {
	switch op {
	case '+', '-', '/':
		return op, true
	case '*', 'x', MultiplySign:
		return MultiplySign, true
	}
	return op, false
}

func isOperatorRune(r rune) bool {
	_, ok := displayOperator(r)
	return ok && r != 'x'
}

func isDigitKey(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}
