package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "tapcalc"
	configFile = "config.yaml"

	// PathEnvVar overrides the config file location.
	PathEnvVar = "TAPCALC_CONFIG"
)

var (
	// Global config instance (loaded lazily)
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigErr  error

	// Mutex for thread-safe file operations
	fileMutex sync.Mutex
)

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/tapcalc or $HOME/.config/tapcalc
//   - macOS: $HOME/.config/tapcalc (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\tapcalc
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
// TAPCALC_CONFIG takes precedence over the platform location.
func GetConfigPath() (string, error) {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load loads the global configuration from disk.
// If the file doesn't exist, returns a new default config.
// Thread-safe - multiple calls will return the same instance.
func Load() (*Config, error) {
	globalConfigOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			globalConfigErr = fmt.Errorf("failed to get config path: %w", err)
			return
		}
		globalConfig, globalConfigErr = LoadFile(path)
	})
	return globalConfig, globalConfigErr
}

// Reload reloads the global configuration, discarding in-memory changes.
func Reload() (*Config, error) {
	fileMutex.Lock()
	globalConfigOnce = sync.Once{}
	fileMutex.Unlock()
	return Load()
}

// LoadFile reads and validates the config at path.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	cfg.fillDefaults()

	return &cfg, nil
}

// Marshal renders the config as commented YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# tapcalc configuration file
#
# calculator.division_check:
#   substring - any "/0" in the expression is reported as a division by zero
#   strict    - only a divisor that evaluates to zero is reported

`)
	return append(header, data...), nil
}

// SaveFile writes the config to path.
// Performs an atomic write to prevent corruption on crash.
func (c *Config) SaveFile(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := c.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// Save writes the config to the default location.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return c.SaveFile(path)
}

// CreateDefaultConfig writes a default configuration file, refusing to
// overwrite an existing one unless force is set. Returns the path written.
func CreateDefaultConfig(force bool) (string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("config file already exists: %s", path)
	}
	return path, NewConfig().SaveFile(path)
}
