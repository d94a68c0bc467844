package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/assetverify/pkg/assetverify/config"
	"github.com/jamesainslie/assetverify/pkg/assetverify/discover"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <root>...",
	Short: "List base directories under the given roots",
	Long: `Walk each root and print every directory that holds a manifest.json,
one per line. Symlinks are not followed.

The output can be fed back to the verifier:
  assetverify $(assetverify discover assets)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringSlice("exclude", nil, "glob patterns to skip (default from discover.exclude)")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	exclude := cfg.Discover.Exclude
	if cmd.Flags().Changed("exclude") {
		exclude, _ = cmd.Flags().GetStringSlice("exclude")
	}

	roots := make([]string, 0, len(args))
	for _, arg := range args {
		root, err := config.ExpandPath(arg)
		if err != nil {
			return err
		}
		roots = append(roots, root)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dirs, err := discover.Find(ctx, roots, discover.Options{Exclude: exclude})
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, dir := range dirs {
		fmt.Fprintln(out, dir)
	}
	printVerbose("Found %d base directories", len(dirs))
	return nil
}
