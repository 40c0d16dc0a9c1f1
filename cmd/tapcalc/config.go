package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/tapcalc/internal/config"
	"github.com/muurk/tapcalc/internal/ui"
)

var forceOverwrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Manage the tapcalc configuration file.

The file is YAML with three sections: calculator (precision, division
check), server (listen address, mDNS, rate limit) and ui (keypad and help
visibility). Command-line flags override values from the file.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Example: `  # Create the default config file
  tapcalc config init

  # Replace an existing file without asking
  tapcalc config init --force`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceOverwrite, "force", "f", false, "Overwrite an existing file without asking")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// resolveConfigPath returns --config when given, else the default path.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := ui.NewPrinter(out)

	if _, err := os.Stat(path); err == nil && !forceOverwrite {
		if !ui.ConfirmOverwrite(cmd.InOrStdin(), out, path, p.Width()) {
			return nil
		}
	}

	if err := config.NewConfig().SaveFile(path); err != nil {
		p.PrintError("Failed to write config", err)
		return err
	}
	p.PrintSuccess("Config written", ui.Detail{Key: "Path", Value: path})
	return nil
}
