package main

import (
	"fmt"

	"github.com/jamesainslie/assetverify/pkg/assetverify/config"
	"github.com/jamesainslie/assetverify/pkg/assetverify/logging"
	"github.com/jamesainslie/assetverify/pkg/assetverify/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initializeLogging is the PersistentPreRunE hook: it surfaces config
// errors and starts file logging before any command runs.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if configErr != nil {
		return configErr
	}

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	return initLogging(cfg, consoleLevel())
}

// consoleLevel picks the stderr log level from --verbose and --quiet.
func consoleLevel() string {
	switch {
	case getQuiet():
		return ""
	case getVerbose():
		return "debug"
	default:
		return "warn"
	}
}

// initLogging initializes file logging from the loaded configuration.
func initLogging(cfg *config.Config, console string) error {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	if console == "debug" {
		level = "debug"
	}

	logCfg := logging.Config{
		Level:        level,
		Path:         cfg.Logging.Path,
		Rotation:     parseRotationConfig(cfg.Logging.Rotation),
		Components:   cfg.Logging.Components,
		ConsoleLevel: console,
	}
	if console == "debug" {
		// --verbose overrides per-component levels.
		logCfg.Components = nil
	}

	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// parseRotationConfig converts the config file rotation settings, falling
// back to the default size when max_size is empty or invalid.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	result := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}

	if rc.MaxSize != "" {
		if size, err := types.ParseSize(rc.MaxSize); err == nil && size > 0 {
			result.MaxSize = size
		}
	}

	return result
}
