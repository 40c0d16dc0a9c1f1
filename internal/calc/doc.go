// Package calc implements the calculator display: the text buffer a user
// types into and the rules that govern it.
//
// # Entry Rules
//
//   - A lone "0" is replaced by the next digit, so "0" then "5" shows "5".
//   - A number holds at most one decimal point; extra points are ignored.
//   - An operator typed after another operator replaces it.
//   - '*' and 'x' are shown as '×'.
//   - Clear empties the display; Backspace never leaves it empty ("0").
//
// # Evaluation
//
// Evaluate hands the text (with '×' turned back into '*') to package expr.
// Non-integer results are rounded to Options.Precision decimals. Failures
// replace the text with "Error: Division by zero" or "Error" and return a
// *Error whose Kind tells them apart.
//
// Division by zero is detected according to Options.DivisionCheck: the
// substring check rejects any "/0" before evaluating (so "1/10" is
// rejected too), the strict check rejects only a divisor equal to zero.
//
// # Keys
//
// Dispatch maps browser key names ("7", "+", "x", "Enter", "Backspace",
// "Escape", "c") to display operations so that every front end shares one
// key map.
package calc
