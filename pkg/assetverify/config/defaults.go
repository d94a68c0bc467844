// Package config provides configuration management for assetverify.
package config

import "time"

// Default configuration values for assetverify.
const (
	// DefaultOutput is the formatter used when none is configured.
	DefaultOutput = "plain"

	// DefaultParallel is how many base directories are verified at once.
	DefaultParallel = 1

	// DefaultRetentionDays is the default number of days to keep journal entries.
	DefaultRetentionDays = 30

	// DefaultDebounce is how long watch mode waits for changes to settle.
	DefaultDebounce = 500 * time.Millisecond

	// ConfigFileName is the configuration file name inside ConfigDir.
	ConfigFileName = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. ASSETVERIFY_SHOW_WARNINGS.
	EnvPrefix = "ASSETVERIFY"
)

// DefaultDiscoverExclusions are skipped when searching for manifests.
var DefaultDiscoverExclusions = []string{
	"**/.git",
	"**/node_modules",
}

// DefaultComponentLevels are the per-component log levels.
var DefaultComponentLevels = map[string]string{
	"manifest":   "info",
	"verifier":   "info",
	"reconciler": "info",
	"watcher":    "warn",
	"discover":   "info",
}
