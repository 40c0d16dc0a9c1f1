package calc

import "unicode/utf8"

// Action is the display operation a key maps to.
type Action int

const (
	ActionNone Action = iota
	ActionDigit
	ActionOperator
	ActionEvaluate
	ActionBackspace
	ActionClear
)

// String returns the action name used in logs and metrics labels.
func (a Action) String() string {
	switch a {
	case ActionDigit:
		return "digit"
	case ActionOperator:
		return "operator"
	case ActionEvaluate:
		return "evaluate"
	case ActionBackspace:
		return "backspace"
	case ActionClear:
		return "clear"
	default:
		return "none"
	}
}

// Key names follow the browser's KeyboardEvent.key values.
const (
	KeyEnter     = "Enter"
	KeyEquals    = "="
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
)

// ActionFor maps a key name to its action. For digit and operator keys the
// rune to append is returned as well.
func ActionFor(key string) (Action, rune) {
	switch key {
	case KeyEnter, KeyEquals:
		return ActionEvaluate, 0
	case KeyBackspace:
		return ActionBackspace, 0
	case KeyEscape, "c", "C":
		return ActionClear, 0
	}

	if utf8.RuneCountInString(key) != 1 {
		return ActionNone, 0
	}
	r, _ := utf8.DecodeRuneInString(key)
	switch {
	case isDigitKey(r):
		return ActionDigit, r
	case r == 'x' || r == MultiplySign:
		return ActionOperator, '*'
	case r == '+' || r == '-' || r == '*' || r == '/':
		return ActionOperator, r
	}
	return ActionNone, 0
}

// Dispatch applies the action bound to key. Unbound keys return ActionNone
// and leave the display untouched. The error is Evaluate's result for the
// evaluate action and nil otherwise.
func Dispatch(d *Display, key string) (Action, error) {
	action, r := ActionFor(key)
	switch action {
	case ActionDigit:
		return action, d.AppendDigit(r)
	case ActionOperator:
		return action, d.AppendOperator(r)
	case ActionEvaluate:
		return action, d.Evaluate()
	case ActionBackspace:
		d.Backspace()
	case ActionClear:
		d.Clear()
	}
	return action, nil
}
