// Package reconciler verifies whole base directories: it loads each
// directory's manifest and runs every directory rule of every entity group
// through the verifier, one report per base directory.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jamesainslie/assetverify/pkg/assetverify/logging"
	"github.com/jamesainslie/assetverify/pkg/assetverify/manifest"
	"github.com/jamesainslie/assetverify/pkg/assetverify/types"
	"github.com/jamesainslie/assetverify/pkg/assetverify/verifier"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Reconciler runs manifests against base directories.
type Reconciler struct {
	fs       afero.Fs
	verifier *verifier.Verifier
	logger   *logging.Logger

	parallelism      int
	deleteUnexpected bool
	onResult         func(types.DirectoryResult)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithParallelism sets how many base directories RunAll verifies at once.
// Values below 2 mean sequential.
func WithParallelism(n int) Option {
	return func(r *Reconciler) {
		if n < 1 {
			n = 1
		}
		r.parallelism = n
	}
}

// WithDeleteUnexpected makes RunAll remove unexpected files instead of
// reporting them.
func WithDeleteUnexpected(enabled bool) Option {
	return func(r *Reconciler) {
		r.deleteUnexpected = enabled
	}
}

// WithResultHandler registers fn to be called as each base directory in
// RunAll finishes. It may be called from multiple goroutines.
func WithResultHandler(fn func(types.DirectoryResult)) Option {
	return func(r *Reconciler) {
		r.onResult = fn
	}
}

// New creates a Reconciler. If v is nil a verifier over fsys is created.
func New(fsys afero.Fs, v *verifier.Verifier, opts ...Option) *Reconciler {
	if v == nil {
		v = verifier.New(fsys)
	}
	r := &Reconciler{
		fs:          fsys,
		verifier:    v,
		logger:      logging.Get("reconciler"),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run verifies one base directory. A missing directory, missing manifest or
// malformed manifest becomes the single error of the returned report; the
// error return is reserved for I/O failures that abort the run.
func (r *Reconciler) Run(baseDir string, deleteUnexpected bool) (types.Report, error) {
	m, err := manifest.Load(r.fs, baseDir)
	if err != nil {
		var structural *manifest.StructuralError
		if errors.As(err, &structural) {
			r.logger.Info("manifest not usable", "dir", baseDir, "reason", structural.Kind.String())
			return types.ErrorReport(structural.Error()), nil
		}
		return types.Report{}, err
	}
	r.logger.Debug("manifest loaded", "dir", baseDir, "groups", len(m.EntityGroups), "rules", m.RuleCount())

	report := types.NewReport()
	for gi, group := range m.EntityGroups {
		for _, rule := range group.Directories {
			ruleReport, err := r.verifier.VerifyDirectory(baseDir, group.Entities, rule, deleteUnexpected)
			if err != nil {
				return report, fmt.Errorf("verifying %s (group %d, path %q): %w", baseDir, gi, rule.Path, err)
			}
			report.Merge(ruleReport)
		}
	}

	return report, nil
}

// RunAll verifies each base directory and returns one result per directory,
// in the order given. A fatal error in any directory stops the run. The
// context is checked before each directory starts.
func (r *Reconciler) RunAll(ctx context.Context, dirs []string) ([]types.DirectoryResult, error) {
	start := time.Now()
	results := make([]types.DirectoryResult, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, dir := range dirs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			report, err := r.Run(dir, r.deleteUnexpected)
			if err != nil {
				return err
			}

			results[i] = types.DirectoryResult{Directory: dir, Report: report}
			if r.onResult != nil {
				r.onResult(results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancellation noticed only by the dispatch loop still fails the run.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	errs, warnings := types.Totals(results)
	r.logger.Info("verification complete",
		"dirs", len(dirs),
		"errors", errs,
		"warnings", warnings,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return results, nil
}
