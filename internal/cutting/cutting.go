// Package cutting plans how to slit a material roll into narrower rolls.
//
// A plan fills the material with as many rolls of the requested width as
// fit, then uses the remainder for at most one extra roll of whichever
// allowed width leaves the least waste. Waste is split evenly between the
// two edges.
package cutting

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Material limits.
const (
	MinMaterialWidth = 500  // mm
	MaxMaterialWidth = 910  // mm
	MinLength        = 30   // m
	MaxLength        = 1100 // m
)

// AllowedWidths are the roll widths (mm) that can be cut, ascending.
var AllowedWidths = []float64{
	20, 25, 30, 32.5, 35, 40, 44, 50, 55, 60, 63,
	70, 74, 80, 84, 90, 94, 100, 104, 110, 120, 150,
}

// ErrInvalidRequest is wrapped by every validation failure.
var ErrInvalidRequest = errors.New("invalid cutting request")

// Request describes the material and the wanted roll width.
type Request struct {
	MaterialWidth int     `json:"material_width"` // mm
	TargetWidth   float64 `json:"target_width"`   // mm
	Length        float64 `json:"length"`         // m
}

// Plan is the result of Calculate. Widths are in mm, areas in m².
type Plan struct {
	MainWidth       float64  `json:"main_width"`
	MainCount       int      `json:"main_count"`
	AdditionalWidth *float64 `json:"additional_width"` // nil when no extra roll fits
	AdditionalCount int      `json:"additional_count"`
	Waste           float64  `json:"waste"`
	WastePerSide    float64  `json:"waste_per_side"`
	MaterialWidth   int      `json:"material_width"`
	Length          float64  `json:"length"`
	TotalArea       float64  `json:"total_area"`
	UsefulArea      float64  `json:"useful_area"`
}

// Validate checks the request against the material limits.
func (r Request) Validate() error {
	if r.MaterialWidth < MinMaterialWidth || r.MaterialWidth > MaxMaterialWidth {
		return fmt.Errorf("%w: material width must be between %d and %d mm", ErrInvalidRequest, MinMaterialWidth, MaxMaterialWidth)
	}
	if math.IsNaN(r.Length) || r.Length < MinLength || r.Length > MaxLength {
		return fmt.Errorf("%w: length must be between %d and %d m", ErrInvalidRequest, MinLength, MaxLength)
	}
	if !IsAllowedWidth(r.TargetWidth) {
		return fmt.Errorf("%w: width %s mm is not one of the allowed widths", ErrInvalidRequest, formatWidth(r.TargetWidth))
	}
	return nil
}

// Calculate returns the cutting plan for req.
func Calculate(req Request) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	material := float64(req.MaterialWidth)
	mainCount := int(math.Floor(material / req.TargetWidth))
	remaining := math.Mod(material, req.TargetWidth)

	plan := &Plan{
		MainWidth:     req.TargetWidth,
		MainCount:     mainCount,
		Waste:         remaining,
		MaterialWidth: req.MaterialWidth,
		Length:        req.Length,
		TotalArea:     round2(material / 1000 * req.Length),
		UsefulArea:    round2(req.TargetWidth * float64(mainCount) / 1000 * req.Length),
	}

	if extra, ok := bestFit(remaining); ok {
		plan.AdditionalWidth = &extra
		plan.AdditionalCount = 1
		plan.Waste = remaining - extra
		plan.UsefulArea += round2(extra / 1000 * req.Length)
	}

	plan.WastePerSide = plan.Waste / 2
	return plan, nil
}

// IsAllowedWidth reports whether w is one of AllowedWidths.
func IsAllowedWidth(w float64) bool {
	for _, allowed := range AllowedWidths {
		if w == allowed {
			return true
		}
	}
	return false
}

// AllowedWidthsString lists the allowed widths for help text.
func AllowedWidthsString() string {
	parts := make([]string, len(AllowedWidths))
	for i, w := range AllowedWidths {
		parts[i] = formatWidth(w)
	}
	return strings.Join(parts, ", ")
}

// bestFit returns the allowed width that leaves the least waste in remaining.
func bestFit(remaining float64) (float64, bool) {
	best, found := 0.0, false
	for _, w := range AllowedWidths {
		if w > remaining {
			continue
		}
		if !found || remaining-w < remaining-best {
			best, found = w, true
		}
	}
	return best, found
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatWidth(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
