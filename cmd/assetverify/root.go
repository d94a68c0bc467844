package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/assetverify/pkg/assetverify/config"
	"github.com/jamesainslie/assetverify/pkg/assetverify/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errVerificationFailed is returned when at least one base directory has an
// error and exit-on-error is enabled.
var errVerificationFailed = errors.New("verification failed")

var (
	cfgFile string
	// configErr holds a config file read failure until a command runs.
	configErr error

	rootCmd = &cobra.Command{
		Use:   "assetverify [directory...]",
		Short: "Verify asset directories against their manifests",
		Long: `assetverify checks that every base directory holds exactly the asset files
its manifest.json declares.

For each entity and each directory rule it reports missing files (errors
when the rule is required, warnings otherwise), files present for ignored
entities (warnings) and files no entity accounts for (errors, or removed
with --delete-unexpected).

Examples:
  assetverify -d assets/characters            # Verify one base directory
  assetverify -d assets/a -d assets/b         # Verify several
  assetverify --discover assets -p 4          # Find and verify every manifest under assets/
  assetverify -d assets --delete-unexpected   # Remove files the manifest does not list
  assetverify -d assets -o json               # Machine-readable report
  assetverify -d assets --watch               # Re-verify on change
  assetverify history                         # View past runs and removals`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initializeLogging,
		RunE:              runVerify,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/assetverify/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	registerVerifyFlags(rootCmd, viper.GetViper())

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	v := viper.GetViper()
	config.ConfigureSources(v, cfgFile)
	config.SetDefaults(v)
	configErr = config.ReadConfigFile(v)
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
