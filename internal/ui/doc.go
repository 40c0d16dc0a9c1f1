// Package ui renders styled terminal output for the tapcalc CLI.
//
// Commands such as `tapcalc eval`, `tapcalc keys` and `tapcalc cut` print
// once and exit. They use a Printer to emit:
//
//   - Header: command banner with its parameters
//   - Result: success or failure box with ordered details and hints
//   - Trace: one line per replayed key with the display after it
//   - Utilization: progress bar for a 0..1 fraction
//
// Output width follows the terminal (golang.org/x/term) and is clamped
// between MinTerminalWidth and MaxContentWidth.
//
// # Logging Integration
//
// zap logging is silent unless TAPCALC_LOG_LEVEL or --log-level is set, so
// the styled output stays clean by default.
package ui
