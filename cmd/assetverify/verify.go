package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesainslie/assetverify/pkg/assetverify/config"
	"github.com/jamesainslie/assetverify/pkg/assetverify/discover"
	"github.com/jamesainslie/assetverify/pkg/assetverify/journal"
	"github.com/jamesainslie/assetverify/pkg/assetverify/output"
	"github.com/jamesainslie/assetverify/pkg/assetverify/reconciler"
	"github.com/jamesainslie/assetverify/pkg/assetverify/trash"
	"github.com/jamesainslie/assetverify/pkg/assetverify/types"
	"github.com/jamesainslie/assetverify/pkg/assetverify/verifier"
	"github.com/jamesainslie/assetverify/pkg/assetverify/watcher"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// verifyOptions holds everything one verify invocation needs. It is built
// from viper once so the run itself never reads global state.
type verifyOptions struct {
	cfg  *config.Config
	dirs []string
}

// loadVerifyOptions builds verifyOptions from v. Positional arguments are
// treated as additional base directories.
func loadVerifyOptions(v *viper.Viper, args []string) (*verifyOptions, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(cfg.Directories)+len(args))
	dirs = append(dirs, cfg.Directories...)
	for _, arg := range args {
		expanded, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, expanded)
	}

	return &verifyOptions{cfg: cfg, dirs: dirs}, nil
}

// resolveDirectories combines the explicit base directories with any found
// under the discovery roots. Explicit directories are verified as given,
// repeats included; with more than one worker each directory runs once.
func resolveDirectories(ctx context.Context, opts *verifyOptions) ([]string, error) {
	dirs := append([]string{}, opts.dirs...)
	if len(opts.cfg.Discover.Roots) > 0 {
		found, err := discover.Find(ctx, opts.cfg.Discover.Roots, discover.Options{
			Exclude: opts.cfg.Discover.Exclude,
		})
		if err != nil {
			return nil, fmt.Errorf("discovery failed: %w", err)
		}
		printVerbose("Discovered %d base directories under %v", len(found), opts.cfg.Discover.Roots)
		dirs = appendMissing(dirs, found...)
	}

	if len(dirs) == 0 {
		return nil, errors.New("no directories to verify: use --directory or --discover")
	}
	if opts.cfg.Parallel > 1 {
		dirs = uniqueDirectories(dirs)
	}
	return dirs, nil
}

// runVerification verifies dirs once, writes the formatted report to w and
// records the run in the journal. It reports whether any directory failed.
func runVerification(ctx context.Context, fsys afero.Fs, cfg *config.Config, dirs []string, w io.Writer) (bool, error) {
	formatter, err := buildFormatter(cfg)
	if err != nil {
		return false, err
	}

	var vopts []verifier.Option
	if cfg.Trash {
		vopts = append(vopts, verifier.WithRemover(trash.New()))
	}
	v := verifier.New(fsys, vopts...)

	rec := reconciler.New(fsys, v,
		reconciler.WithParallelism(cfg.Parallel),
		reconciler.WithDeleteUnexpected(cfg.DeleteUnexpected),
		reconciler.WithResultHandler(func(res types.DirectoryResult) {
			printVerbose("Verified %s: %d errors, %d warnings, %d removed",
				res.Directory, len(res.Report.Errors), len(res.Report.Warnings), len(res.Report.Removed))
		}),
	)

	startTime := time.Now()
	results, err := rec.RunAll(ctx, dirs)
	if err != nil {
		return false, fmt.Errorf("verification aborted: %w", err)
	}

	result := &output.Result{
		Directories:      results,
		ShowWarnings:     cfg.ShowWarnings,
		DeleteUnexpected: cfg.DeleteUnexpected,
		Duration:         time.Since(startTime),
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return false, fmt.Errorf("failed to format output: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return false, fmt.Errorf("failed to write output: %w", err)
	}

	recordJournal(fsys, cfg, results)

	return result.Failed(), nil
}

// recordJournal writes the run and any removals to the journal. Journal
// failures never fail the run.
func recordJournal(fsys afero.Fs, cfg *config.Config, results []types.DirectoryResult) {
	if !cfg.Journal.Enabled {
		return
	}

	j, err := journal.New(fsys, cfg.Journal.Path)
	if err != nil {
		printVerbose("Journal disabled: %v", err)
		return
	}
	if err := j.EnsureDir(); err != nil {
		printVerbose("Failed to create journal directory: %v", err)
		return
	}

	if entry, err := j.LogVerify(results); err != nil {
		printVerbose("Failed to record run: %v", err)
	} else {
		printVerbose("Recorded run %s", entry.ID)
	}

	if cfg.DeleteUnexpected {
		entry, err := j.LogDelete(results, cfg.Trash)
		switch {
		case err != nil:
			printVerbose("Failed to record removals: %v", err)
		case entry != nil:
			printVerbose("Recorded %d removed files in %s", len(entry.Files), entry.ID)
		}
	}

	if removed, err := j.Cleanup(cfg.Journal.RetentionDays); err != nil {
		printVerbose("Journal cleanup failed: %v", err)
	} else if removed > 0 {
		printVerbose("Removed %d expired journal entries", removed)
	}
}

// watchAndVerify re-verifies base directories as they change until ctx is
// cancelled.
func watchAndVerify(ctx context.Context, fsys afero.Fs, cfg *config.Config, dirs []string, w io.Writer) error {
	fw, err := watcher.New(fsys)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range dirs {
		if err := fw.Watch(dir); err != nil {
			printError("cannot watch %s: %v", dir, err)
		}
	}

	printInfo("Watching %d directories, press Ctrl+C to stop", len(dirs))
	fw.Run(ctx, cfg.Watch.Debounce, func(changed []string) {
		printVerbose("Re-verifying %v", changed)
		if _, err := runVerification(ctx, fsys, cfg, changed, w); err != nil {
			printError("%v", err)
		}
	})
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	opts, err := loadVerifyOptions(viper.GetViper(), args)
	if err != nil {
		return err
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	dirs, err := resolveDirectories(ctx, opts)
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	out := cmd.OutOrStdout()

	failed, err := runVerification(ctx, fsys, opts.cfg, dirs, out)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			printInfo("Verification cancelled")
			return nil
		}
		return err
	}

	if opts.cfg.Watch.Enabled {
		return watchAndVerify(ctx, fsys, opts.cfg, dirs, out)
	}

	return exitStatus(failed, opts.cfg.ExitOnError)
}

// exitStatus maps a finished run to the command's error.
func exitStatus(failed, exitOnError bool) error {
	if failed && exitOnError {
		return errVerificationFailed
	}
	return nil
}
