package calc

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{-2, "-2"},
		{0.5, "0.5"},
		{math.Copysign(0, -1), "0"},
		{123456789012, "123456789012"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e22, "1.5e+22"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{-1.5e-7, "-1.5e-7"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		in        float64
		precision int
		want      string
	}{
		{1.0 / 3.0, 8, "0.33333333"},
		{2.0 / 3.0, 8, "0.66666667"},
		{0.1 + 0.2, 8, "0.3"},
		{1e-8, 8, "1e-8"},
		{1e-9, 8, "0"},
		{-1.0 / 3.0, 8, "-0.33333333"},
		{2.5, 0, "3"},
		{-2.5, 0, "-3"},
		{1.0 / 512.0, 8, "0.00195313"},
		{9.999999999, 8, "10"},
		{1.0 / 3.0, 99, "0.333333333333333"},
		{7, 8, "7"},
	}

	for _, tt := range tests {
		if got := FormatResult(tt.in, tt.precision); got != tt.want {
			t.Errorf("FormatResult(%v, %d) = %q, want %q", tt.in, tt.precision, got, tt.want)
		}
	}
}
