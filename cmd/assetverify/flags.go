package main

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/assetverify/pkg/assetverify/config"
	"github.com/jamesainslie/assetverify/pkg/assetverify/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// registerVerifyFlags adds the verification flags to cmd and binds them to
// their config keys on v.
func registerVerifyFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()

	// Verification. Directory values are taken verbatim, commas included.
	flags.StringArrayP("directory", "d", nil, "base directory holding a manifest.json (can be specified multiple times)")
	flags.Bool("delete-unexpected", false, "remove files the manifest does not account for")
	flags.Bool("show-warnings", true, "include warnings in the report")
	flags.Bool("exit-on-error", true, "exit with status 1 when any error is reported")
	flags.Bool("trash", false, "move removed files to the system trash (requires --delete-unexpected)")
	flags.IntP("parallel", "p", config.DefaultParallel, "number of base directories verified concurrently")

	// Output
	flags.StringP("output", "o", config.DefaultOutput, fmt.Sprintf("output format (%s)", strings.Join(output.Available(), ", ")))
	flags.String("template", "", "Go template for -o template")

	// Discovery and watch
	flags.StringSlice("discover", nil, "find base directories under these roots")
	flags.StringSlice("exclude", nil, "glob patterns skipped during discovery (e.g. \"**/build\")")
	flags.BoolP("watch", "w", false, "re-verify base directories when their files change")

	_ = v.BindPFlag("directories", flags.Lookup("directory"))
	_ = v.BindPFlag("delete_unexpected", flags.Lookup("delete-unexpected"))
	_ = v.BindPFlag("show_warnings", flags.Lookup("show-warnings"))
	_ = v.BindPFlag("exit_on_error", flags.Lookup("exit-on-error"))
	_ = v.BindPFlag("trash", flags.Lookup("trash"))
	_ = v.BindPFlag("parallel", flags.Lookup("parallel"))
	_ = v.BindPFlag("output", flags.Lookup("output"))
	_ = v.BindPFlag("template", flags.Lookup("template"))
	_ = v.BindPFlag("discover.roots", flags.Lookup("discover"))
	_ = v.BindPFlag("discover.exclude", flags.Lookup("exclude"))
	_ = v.BindPFlag("watch.enabled", flags.Lookup("watch"))
}

// buildFormatter returns the formatter selected by cfg.Output.
func buildFormatter(cfg *config.Config) (output.Formatter, error) {
	outFormat := cfg.Output
	if outFormat == "" {
		outFormat = config.DefaultOutput
	}

	if outFormat == "template" {
		if cfg.Template == "" {
			return nil, fmt.Errorf("--template is required when using -o template")
		}
		return output.NewTemplateFormatter(cfg.Template), nil
	}

	formatter, err := output.Get(outFormat)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", outFormat, output.Available())
	}
	return formatter, nil
}

// appendMissing appends the entries of extra that dirs does not already
// hold. Repeats within dirs are kept.
func appendMissing(dirs []string, extra ...string) []string {
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		seen[d] = true
	}
	for _, d := range extra {
		if seen[d] {
			continue
		}
		seen[d] = true
		dirs = append(dirs, d)
	}
	return dirs
}

// uniqueDirectories drops repeated directories, keeping first-seen order.
func uniqueDirectories(dirs []string) []string {
	return appendMissing(nil, dirs...)
}
