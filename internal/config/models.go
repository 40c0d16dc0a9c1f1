package config

import (
	"fmt"

	"github.com/muurk/tapcalc/internal/calc"
)

// CurrentVersion is the config file schema version.
const CurrentVersion = 1

// Config represents the entire user configuration file.
type Config struct {
	Version    int              `yaml:"version"`
	Calculator *CalculatorPrefs `yaml:"calculator,omitempty"`
	Server     *ServerPrefs     `yaml:"server,omitempty"`
	UI         *UIPrefs         `yaml:"ui,omitempty"`
}

// CalculatorPrefs controls evaluation.
type CalculatorPrefs struct {
	Precision     int    `yaml:"precision"`      // Decimal places kept for non-integer results
	DivisionCheck string `yaml:"division_check"` // "substring" or "strict"
}

// ServerPrefs controls `tapcalc serve`.
type ServerPrefs struct {
	Host         string  `yaml:"host"`                    // Listen host (empty = all interfaces)
	Port         int     `yaml:"port"`                    // Listen port
	MDNS         bool    `yaml:"mdns"`                    // Advertise the server over mDNS
	InstanceName string  `yaml:"instance_name,omitempty"` // mDNS instance name (default: hostname)
	RateLimit    float64 `yaml:"rate_limit"`              // Key events per second per client host (0 = unlimited)
	RateBurst    int     `yaml:"rate_burst"`              // Burst size for the limiter
}

// UIPrefs controls the terminal calculator.
type UIPrefs struct {
	ShowKeypad bool `yaml:"show_keypad"` // Render the keypad under the display
	ShowHelp   bool `yaml:"show_help"`   // Render the key binding help line
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Calculator: &CalculatorPrefs{
			Precision:     calc.DefaultPrecision,
			DivisionCheck: string(calc.DivisionCheckSubstring),
		},
		Server: &ServerPrefs{
			Port:      8080,
			MDNS:      false,
			RateLimit: 50,
			RateBurst: 100,
		},
		UI: &UIPrefs{
			ShowKeypad: true,
			ShowHelp:   true,
		},
	}
}

// fillDefaults replaces missing sections with defaults.
func (c *Config) fillDefaults() {
	defaults := NewConfig()
	if c.Calculator == nil {
		c.Calculator = defaults.Calculator
	}
	if c.Server == nil {
		c.Server = defaults.Server
	}
	if c.UI == nil {
		c.UI = defaults.UI
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Calculator != nil {
		if c.Calculator.Precision < 0 || c.Calculator.Precision > calc.MaxPrecision {
			return fmt.Errorf("calculator.precision must be between 0 and %d, got %d", calc.MaxPrecision, c.Calculator.Precision)
		}
		if _, err := calc.ParseDivisionCheck(c.Calculator.DivisionCheck); err != nil {
			return fmt.Errorf("calculator.division_check: %w", err)
		}
	}
	if c.Server != nil {
		if c.Server.Port < 0 || c.Server.Port > 65535 {
			return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
		}
		if c.Server.RateLimit < 0 {
			return fmt.Errorf("server.rate_limit must not be negative, got %v", c.Server.RateLimit)
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
			return fmt.Errorf("server.rate_burst must be positive when rate_limit is set, got %d", c.Server.RateBurst)
		}
	}
	return nil
}

// CalcOptions converts the calculator section to display options.
func (c *Config) CalcOptions() (calc.Options, error) {
	prefs := c.Calculator
	if prefs == nil {
		return calc.DefaultOptions(), nil
	}
	check, err := calc.ParseDivisionCheck(prefs.DivisionCheck)
	if err != nil {
		return calc.Options{}, err
	}
	return calc.Options{Precision: prefs.Precision, DivisionCheck: check}, nil
}
