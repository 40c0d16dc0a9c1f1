package expr

import (
	"errors"
	"fmt"
)

// ErrDivisionByZero is returned by a strict Evaluator when a divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

// Evaluator computes float64 results for arithmetic expressions.
//
// With StrictDivision unset, division follows IEEE 754 (1/0 is +Inf, 0/0 is
// NaN), which is what a browser evaluator produces. With it set, any zero
// divisor is an ErrDivisionByZero.
type Evaluator struct {
	StrictDivision bool
}

// Eval parses and evaluates src.
func (e Evaluator) Eval(src string) (float64, error) {
	node, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return e.EvalNode(node)
}

// EvalNode evaluates an already parsed tree.
func (e Evaluator) EvalNode(n Node) (float64, error) {
	switch n := n.(type) {
	case *Number:
		return n.Value, nil

	case *Unary:
		x, err := e.EvalNode(n.X)
		if err != nil {
			return 0, err
		}
		if n.Op == '-' {
			return -x, nil
		}
		return x, nil

	case *Binary:
		x, err := e.EvalNode(n.X)
		if err != nil {
			return 0, err
		}
		y, err := e.EvalNode(n.Y)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case '+':
			return x + y, nil
		case '-':
			return x - y, nil
		case '*':
			return x * y, nil
		case '/':
			if y == 0 && e.StrictDivision {
				return 0, fmt.Errorf("offset %d: %w", n.Offset, ErrDivisionByZero)
			}
			return x / y, nil
		}
		return 0, fmt.Errorf("unknown operator %q", n.Op)

	case nil:
		return 0, errors.New("nil expression")
	}
	return 0, fmt.Errorf("unsupported node %T", n)
}

// Eval evaluates src with IEEE 754 division.
func Eval(src string) (float64, error) {
	return Evaluator{}.Eval(src)
}
