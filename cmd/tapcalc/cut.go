package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/tapcalc/internal/cutting"
	"github.com/muurk/tapcalc/internal/ui"
)

// Cutting command flags
var (
	materialWidth int
	targetWidth   float64
	rollLength    float64
	cutFormat     string
)

var cutCmd = &cobra.Command{
	Use:   "cut",
	Short: "Plan how to slit a material roll",
	Long: fmt.Sprintf(`Plan how to slit a material roll into narrower rolls.

As many rolls of --target-width as fit are cut from the material. The
remainder becomes at most one extra roll of the allowed width that leaves
the least waste, and the waste is split evenly between both edges.

Limits:
  Material width: %d-%d mm
  Length:         %d-%d m
  Allowed widths: %s mm`,
		cutting.MinMaterialWidth, cutting.MaxMaterialWidth,
		cutting.MinLength, cutting.MaxLength,
		cutting.AllowedWidthsString()),
	Example: `  # 910 mm material cut into 100 mm rolls, 100 m long
  tapcalc cut --material-width 910 --target-width 100 --length 100

  # JSON output for scripting
  tapcalc cut --material-width 600 --target-width 32.5 --length 100 --format json`,
	RunE: runCut,
}

func init() {
	cutCmd.Flags().IntVar(&materialWidth, "material-width", 0, "Material width in mm")
	cutCmd.Flags().Float64Var(&targetWidth, "target-width", 0, "Wanted roll width in mm")
	cutCmd.Flags().Float64Var(&rollLength, "length", 0, "Roll length in m")
	cutCmd.Flags().StringVar(&cutFormat, "format", "detailed", "Output format (detailed, json)")
	_ = cutCmd.MarkFlagRequired("material-width")
	_ = cutCmd.MarkFlagRequired("target-width")
	_ = cutCmd.MarkFlagRequired("length")

	rootCmd.AddCommand(cutCmd)
}

func runCut(cmd *cobra.Command, args []string) error {
	req := cutting.Request{
		MaterialWidth: materialWidth,
		TargetWidth:   targetWidth,
		Length:        rollLength,
	}

	out := cmd.OutOrStdout()
	plan, err := cutting.Calculate(req)

	switch cutFormat {
	case "json":
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "detailed":
	default:
		return fmt.Errorf("invalid --format %q (expected detailed or json)", cutFormat)
	}

	p := ui.NewPrinter(out)
	p.PrintHeader("Cutting plan", "tapcalc cut",
		ui.Detail{Key: "Material", Value: strconv.Itoa(req.MaterialWidth) + " mm"},
		ui.Detail{Key: "Target", Value: formatFloat(req.TargetWidth) + " mm"},
		ui.Detail{Key: "Length", Value: formatFloat(req.Length) + " m"},
	)

	if err != nil {
		p.PrintError("Cannot plan this cut", err,
			"Allowed widths: "+cutting.AllowedWidthsString(),
		)
		return err
	}

	details := []ui.Detail{
		{Key: "Main rolls", Value: fmt.Sprintf("%d × %s mm", plan.MainCount, formatFloat(plan.MainWidth))},
	}
	if plan.AdditionalWidth != nil {
		details = append(details, ui.Detail{
			Key:   "Extra roll",
			Value: fmt.Sprintf("%d × %s mm", plan.AdditionalCount, formatFloat(*plan.AdditionalWidth)),
		})
	}
	details = append(details,
		ui.Detail{Key: "Waste", Value: formatFloat(plan.Waste) + " mm (" + formatFloat(plan.WastePerSide) + " mm per side)"},
		ui.Detail{Key: "Total area", Value: formatFloat(plan.TotalArea) + " m²"},
		ui.Detail{Key: "Useful area", Value: formatFloat(plan.UsefulArea) + " m²"},
	)
	p.PrintSuccess("Cutting plan", details...)

	if plan.TotalArea > 0 {
		p.PrintUtilization("Useful area", plan.UsefulArea/plan.TotalArea)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
