// Package expr parses and evaluates arithmetic expressions.
//
// It is a small recursive-descent evaluator for the four operators,
// unary signs, parentheses and decimal literals. Nothing else is
// accepted, so display text can be evaluated without handing it to a
// general-purpose interpreter.
//
//	v, err := expr.Eval("2+3*4") // 14
//
//	strict := expr.Evaluator{StrictDivision: true}
//	_, err = strict.Eval("1/0")  // errors.Is(err, expr.ErrDivisionByZero)
//
// Malformed input is reported as a *SyntaxError with the byte offset of
// the offending token.
package expr
