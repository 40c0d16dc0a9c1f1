// Package config manages the tapcalc configuration file.
//
// The file is YAML and lives in the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/tapcalc/config.yaml or $HOME/.config/tapcalc/config.yaml
//   - macOS: $HOME/.config/tapcalc/config.yaml
//   - Windows: %LOCALAPPDATA%\tapcalc\config.yaml
//
// TAPCALC_CONFIG points at a different file. A missing file is not an
// error; the defaults from NewConfig apply.
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	opts, err := cfg.CalcOptions()
//	if err != nil {
//	    return err
//	}
//	display := calc.NewDisplay(opts)
//
// Command-line flags override file values; see cmd/tapcalc.
//
// # Thread Safety
//
// The global config uses sync.Once for safe initialization across goroutines.
// File writes are protected by a mutex and go through a temporary file and
// rename.
package config
