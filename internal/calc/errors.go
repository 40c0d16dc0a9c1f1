package calc

import (
	"errors"
	"fmt"
)

// Display texts written in place of a result.
const (
	DivisionByZeroText    = "Error: Division by zero"
	InvalidExpressionText = "Error"
)

// ErrUnsupportedKey is returned for characters the display does not accept.
var ErrUnsupportedKey = errors.New("unsupported key")

// ErrorKind represents the category of evaluation failure
type ErrorKind int

const (
	// KindInvalidExpression covers any expression the evaluator rejects
	KindInvalidExpression ErrorKind = iota
	// KindDivisionByZero indicates a detected division by zero
	KindDivisionByZero
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidExpression:
		return "Invalid Expression"
	case KindDivisionByZero:
		return "Division By Zero"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is returned by Evaluate when no result could be produced.
// The display already shows Display() when it is returned.
type Error struct {
	Kind       ErrorKind
	Expression string // machine expression ('×' replaced with '*')
	Err        error  // underlying evaluator error, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %q (caused by: %v)", e.Kind, e.Expression, e.Err)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.Expression)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Display returns the text shown in place of a result.
func (e *Error) Display() string {
	if e.Kind == KindDivisionByZero {
		return DivisionByZeroText
	}
	return InvalidExpressionText
}

// IsDivisionByZero reports whether err is a division-by-zero evaluation error.
func IsDivisionByZero(err error) bool {
	var calcErr *Error
	return errors.As(err, &calcErr) && calcErr.Kind == KindDivisionByZero
}

// IsInvalidExpression reports whether err is a generic evaluation failure.
func IsInvalidExpression(err error) bool {
	var calcErr *Error
	return errors.As(err, &calcErr) && calcErr.Kind == KindInvalidExpression
}
