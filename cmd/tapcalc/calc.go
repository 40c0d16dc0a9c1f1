package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/muurk/tapcalc/internal/calc"
	"github.com/muurk/tapcalc/internal/logging"
	"github.com/muurk/tapcalc/internal/tui"
	"github.com/muurk/tapcalc/internal/ui"
)

// Calculator command flags
var (
	precision     int
	divisionCheck string
	outputFormat  string
	showTrace     bool
	noKeypad      bool
	noHelp        bool
)

func init() {
	// Evaluation flags override the calculator section of the config file
	rootCmd.PersistentFlags().IntVar(&precision, "precision", calc.DefaultPrecision, "Decimal places kept for non-integer results")
	rootCmd.PersistentFlags().StringVar(&divisionCheck, "division-check", string(calc.DivisionCheckSubstring), "Division by zero detection (substring, strict)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(keysCmd)
}

// calcOptions merges the config file with explicitly set flags.
func calcOptions(cmd *cobra.Command) (calc.Options, error) {
	opts, err := cfg.CalcOptions()
	if err != nil {
		return calc.Options{}, err
	}
	if cmd.Flags().Changed("precision") {
		if precision < 0 || precision > calc.MaxPrecision {
			return calc.Options{}, fmt.Errorf("--precision must be between 0 and %d", calc.MaxPrecision)
		}
		opts.Precision = precision
	}
	if cmd.Flags().Changed("division-check") {
		check, err := calc.ParseDivisionCheck(divisionCheck)
		if err != nil {
			return calc.Options{}, err
		}
		opts.DivisionCheck = check
	}
	return opts, nil
}

// tuiCmd launches the interactive terminal calculator
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal calculator",
	Long: `Launch the interactive terminal calculator.

Type digits and operators as on a keypad. Enter or = evaluates, Backspace
deletes, Esc or c clears. Tab opens an input line whose text is replayed
key by key into the display. Press q or ctrl+c to quit.`,
	Example: `  # Launch the calculator
  tapcalc tui
  # Or simply (tui is default):
  tapcalc

  # Evaluate 1/10 as 0.1 instead of reporting division by zero
  tapcalc tui --division-check strict`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&noKeypad, "no-keypad", false, "Hide the keypad")
	tuiCmd.Flags().BoolVar(&noHelp, "no-help", false, "Hide the key binding help line")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal() {
		return fmt.Errorf("the terminal calculator needs an interactive terminal; use 'tapcalc eval' or 'tapcalc keys' in scripts")
	}

	opts, err := calcOptions(cmd)
	if err != nil {
		return err
	}

	m, err := tui.RunCalculator(tui.Options{
		Calculator: opts,
		ShowKeypad: cfg.UI.ShowKeypad && !noKeypad,
		ShowHelp:   cfg.UI.ShowHelp && !noHelp,
	})
	if err != nil {
		return err
	}
	if m.Display != nil && m.Display.Text() != "" {
		fmt.Fprintln(cmd.OutOrStdout(), m.Display.Text())
	}
	return nil
}

// evalResult is one evaluated expression in --format json output.
type evalResult struct {
	Expression string `json:"expression"`
	Display    string `json:"display"`
	State      string `json:"state"`
	Error      string `json:"error,omitempty"`
}

// evalCmd evaluates expressions by replaying them into a display
var evalCmd = &cobra.Command{
	Use:   "eval <expression>...",
	Short: "Evaluate expressions as if typed on the keypad",
	Long: `Evaluate each expression by typing it into a fresh display, one key per
character, and pressing Enter.

Entry rules apply: a leading zero is replaced, a second decimal point in a
number is dropped and consecutive operators collapse to the last one. Both
x and × are accepted for multiplication. Whitespace is skipped; any other
character is rejected.

The command exits non-zero when any expression fails to evaluate.`,
	Example: `  # Evaluate one expression
  tapcalc eval "12x3+4"

  # Several at once, as JSON
  tapcalc eval 1/3 2+2 --format json

  # Plain output for scripts
  tapcalc eval "7*6" --format plain`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, plain, json)")
}

// replayExpression types expr into d and evaluates it.
func replayExpression(d *calc.Display, expr string) error {
	for _, r := range expr {
		if unicode.IsSpace(r) {
			continue
		}
		key := string(r)
		action, err := calc.Dispatch(d, key)
		if action == calc.ActionNone {
			return fmt.Errorf("%w: %q", calc.ErrUnsupportedKey, key)
		}
		if err != nil {
			return err
		}
		logging.LogKeyEvent("cli", key, d.Text(), true)
	}
	before := d.Text()
	err := d.Evaluate()
	logging.LogEvaluation("cli", calc.MachineExpression(before), d.Text(), err)
	return err
}

func runEval(cmd *cobra.Command, args []string) error {
	opts, err := calcOptions(cmd)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "detailed", "plain", "json":
	default:
		return fmt.Errorf("invalid --format %q (expected detailed, plain or json)", outputFormat)
	}

	out := cmd.OutOrStdout()
	printer := ui.NewPrinter(out)
	results := make([]evalResult, 0, len(args))
	failed := 0

	for _, expr := range args {
		d := calc.NewDisplay(opts)
		err := replayExpression(d, expr)

		res := evalResult{Expression: expr, Display: d.Text(), State: string(d.State())}
		if err != nil {
			failed++
			res.Error = err.Error()
		}
		results = append(results, res)

		switch outputFormat {
		case "plain":
			if err != nil && errors.Is(err, calc.ErrUnsupportedKey) {
				fmt.Fprintf(out, "%s\n", err)
				continue
			}
			fmt.Fprintln(out, d.Text())
		case "detailed":
			printEvalResult(printer, expr, d, err)
		}
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d expressions failed", failed, len(args))
	}
	return nil
}

func printEvalResult(p *ui.Printer, expr string, d *calc.Display, err error) {
	if err == nil {
		p.PrintSuccess(expr,
			ui.Detail{Key: "Result", Value: d.Text()},
			ui.Detail{Key: "Precision", Value: strconv.Itoa(d.Options().Precision)},
		)
		return
	}

	var calcErr *calc.Error
	switch {
	case errors.As(err, &calcErr) && calcErr.Kind == calc.KindDivisionByZero:
		hints := []string{"Remove the division by zero"}
		if d.Options().DivisionCheck == calc.DivisionCheckSubstring {
			hints = append(hints, "Use --division-check strict for divisors like 10")
		}
		p.PrintError(expr, calcErr, hints...)
	case errors.As(err, &calcErr):
		p.PrintError(expr, calcErr,
			"Check for a trailing or leading operator",
			"Display shows: "+d.Text(),
		)
	default:
		p.PrintError(expr, err, "Use digits, '.', + - * x / only")
	}
}

// keysCmd replays browser key names into a display
var keysCmd = &cobra.Command{
	Use:   "keys <key>...",
	Short: "Replay key names into a display",
	Long: `Replay a sequence of key names into a fresh display and print the result.

Key names are the browser's: 0-9, '.', + - * x /, Enter, =, Backspace,
Escape, c. Unbound names are ignored exactly as the page ignores them.
Use -- before the keys when the sequence starts with '-'.`,
	Example: `  # Type 1 + 2 and evaluate
  tapcalc keys 1 + 2 Enter

  # Show the display after every key
  tapcalc keys 4 + - 5 Backspace Backspace --trace

  # Start with a minus sign
  tapcalc keys -- - 5 =`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKeys,
}

func init() {
	keysCmd.Flags().BoolVar(&showTrace, "trace", false, "Print the display after every key")
}

func runKeys(cmd *cobra.Command, args []string) error {
	opts, err := calcOptions(cmd)
	if err != nil {
		return err
	}

	d := calc.NewDisplay(opts)
	steps := make([]ui.TraceStep, 0, len(args))
	for _, key := range args {
		before := d.Text()
		action, err := calc.Dispatch(d, key)
		logging.LogKeyEvent("cli", key, d.Text(), action != calc.ActionNone)
		if action == calc.ActionEvaluate {
			logging.LogEvaluation("cli", calc.MachineExpression(before), d.Text(), err)
		}

		step := ui.TraceStep{Key: key, Display: d.Text(), Err: err}
		if action != calc.ActionNone {
			step.Action = action.String()
		}
		steps = append(steps, step)
	}

	out := cmd.OutOrStdout()
	if showTrace {
		ui.NewPrinter(out).PrintTrace(steps)
		return nil
	}
	fmt.Fprintln(out, d.Text())
	return nil
}
