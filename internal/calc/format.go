package calc

import (
	"math"
	"strconv"
	"strings"
)

// DefaultPrecision is the number of decimal places non-integer results keep.
const DefaultPrecision = 8

// MaxPrecision bounds Options.Precision.
const MaxPrecision = 15

// FormatResult renders an evaluation result for the display.
//
// Non-integer values are rounded to precision decimal places and parsed
// back, so 1/3 shows "0.33333333" and 0.1+0.2 shows "0.3".
func FormatResult(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	if precision > MaxPrecision {
		precision = MaxPrecision
	}

	if isFiniteNonInteger(v) {
		v = toFixed(v, precision)
	}
	return FormatNumber(v)
}

// toFixed rounds v to precision decimals, ties away from zero, working on
// the exact decimal expansion of v.
func toFixed(v float64, precision int) float64 {
	// 1074 fractional digits hold any float64 exactly.
	exact := strconv.FormatFloat(math.Abs(v), 'f', 1074, 64)
	cut := strings.IndexByte(exact, '.') + 1 + precision
	kept := exact[:cut]
	if exact[cut] >= '5' {
		kept = incrementLastDigit(kept)
	}

	rounded, err := strconv.ParseFloat(strings.TrimSuffix(kept, "."), 64)
	if err != nil {
		return v
	}
	if v < 0 {
		return -rounded
	}
	return rounded
}

// incrementLastDigit adds one unit in the last place of a decimal string.
func incrementLastDigit(s string) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		switch {
		case b[i] == '.':
			continue
		case b[i] == '9':
			b[i] = '0'
		default:
			b[i]++
			return string(b)
		}
	}
	return "1" + string(b)
}

// FormatNumber prints v the way a browser converts a number to a string:
// shortest round-trip digits, exponent notation below 1e-6 and from 1e21
// up, "0" for negative zero.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return exponentForm(strconv.FormatFloat(v, 'e', -1, 64))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// exponentForm rewrites Go's "1.5e-07" as "1.5e-7".
func exponentForm(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

func isFiniteNonInteger(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v) && v != math.Trunc(v)
}
