package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// DiscoverConfig configures manifest discovery.
type DiscoverConfig struct {
	Roots   []string `mapstructure:"roots"`
	Exclude []string `mapstructure:"exclude"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// JournalConfig configures the run journal.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Directories      []string       `mapstructure:"directories"`
	DeleteUnexpected bool           `mapstructure:"delete_unexpected"`
	ShowWarnings     bool           `mapstructure:"show_warnings"`
	ExitOnError      bool           `mapstructure:"exit_on_error"`
	Trash            bool           `mapstructure:"trash"`
	Output           string         `mapstructure:"output"`
	Template         string         `mapstructure:"template"`
	Parallel         int            `mapstructure:"parallel"`
	Discover         DiscoverConfig `mapstructure:"discover"`
	Watch            WatchConfig    `mapstructure:"watch"`
	Journal          JournalConfig  `mapstructure:"journal"`
	Logging          LoggingConfig  `mapstructure:"logging"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("directories", []string{})
	v.SetDefault("delete_unexpected", false)
	v.SetDefault("show_warnings", true)
	v.SetDefault("exit_on_error", true)
	v.SetDefault("trash", false)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("template", "")
	v.SetDefault("parallel", DefaultParallel)

	v.SetDefault("discover.roots", []string{})
	v.SetDefault("discover.exclude", DefaultDiscoverExclusions)

	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.debounce", DefaultDebounce)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "") // Empty means JournalDir()
	v.SetDefault("journal.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", DefaultComponentLevels)
}

// ConfigureSources points v at the config search path and environment.
// An explicit file takes precedence over the search path.
func ConfigureSources(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// ReadConfigFile reads v's config file, treating a missing file on the
// search path as empty.
func ReadConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/assetverify/config.yaml
//   - $HOME/.config/assetverify/config.yaml
//
// Environment variables are prefixed with ASSETVERIFY_
// (e.g., ASSETVERIFY_SHOW_WARNINGS=false).
func Load() (*Config, error) {
	v := viper.New()
	ConfigureSources(v, "")
	SetDefaults(v)

	if err := ReadConfigFile(v); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes v into a Config and resolves paths.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Journal.Path == "" {
		dir, err := JournalDir()
		if err != nil {
			return nil, err
		}
		cfg.Journal.Path = dir
	}

	var err error
	if cfg.Journal.Path, err = ExpandPath(cfg.Journal.Path); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}
	for i, dir := range cfg.Directories {
		if cfg.Directories[i], err = ExpandPath(dir); err != nil {
			return nil, err
		}
	}
	for i, dir := range cfg.Discover.Roots {
		if cfg.Discover.Roots[i], err = ExpandPath(dir); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// Validate checks values the CLI cannot recover from.
func (c *Config) Validate() error {
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce cannot be negative, got %s", c.Watch.Debounce)
	}
	if c.Trash && !c.DeleteUnexpected {
		return errors.New("trash requires delete_unexpected")
	}
	return nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "assetverify"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "assetverify"), nil
}

// ConfigPath returns the default configuration file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// JournalDir returns the default journal directory.
func JournalDir() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "journal"), nil
}

// StateDir returns $XDG_STATE_HOME/assetverify/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "assetverify")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	journalDir, err := JournalDir()
	if err != nil {
		return "", err
	}

	defaultConfig := fmt.Sprintf(`# assetverify configuration

# Base directories verified when no --directory flag is given
directories: []

# Remove files no entity accounts for instead of reporting them
delete_unexpected: false

# Move removed files to the system trash (requires delete_unexpected)
trash: false

# Print warnings after errors
show_warnings: true

# Exit with status 1 when any base directory has an error
exit_on_error: true

# Output format: plain, pretty, json, yaml, template
output: %s

# Base directories verified concurrently
parallel: %d

# Manifest discovery
discover:
  roots: []
  exclude:
    - "**/.git"
    - "**/node_modules"

# Watch mode
watch:
  enabled: false
  debounce: %s

# Journal of runs and removed files
journal:
  enabled: true
  path: %s
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/assetverify/assetverify.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    manifest: info
    verifier: info
    reconciler: info
    watcher: warn
    discover: info
`, DefaultOutput, DefaultParallel, DefaultDebounce, journalDir, DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
