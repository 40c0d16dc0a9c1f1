// Tapcalc is a keypad calculator for the terminal and the browser.
//
// It drives one display state machine from three surfaces: an interactive
// terminal UI, a WebSocket server that serves the browser keypad page, and
// one-shot commands for scripting.
//
// Usage:
//
//	tapcalc [command] [flags]
//
// Running without arguments launches the terminal calculator.
// See 'tapcalc --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/tapcalc/internal/config"
	"github.com/muurk/tapcalc/internal/logging"
	"github.com/muurk/tapcalc/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	logLevel   string
	configPath string
)

// cfg is the configuration loaded before every command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tapcalc",
	Short: "Keypad calculator for the terminal and the browser",
	Long: `A keypad calculator with one display for every surface.

Keys are entered one at a time, exactly as on a pocket calculator: digits
append, consecutive operators replace each other, Enter or = evaluates,
Backspace deletes and Escape or c clears.

If no command is specified, the terminal calculator launches automatically.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the terminal calculator
		return runTUI(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty unless "+logging.LogLevelEnvVar+" is set")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: platform config dir, or "+config.PathEnvVar+")")

	rootCmd.AddCommand(versionCmd)
}

// setup initializes logging and loads the configuration file.
func setup(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tapcalc %s\n", version.Full())
	},
}
