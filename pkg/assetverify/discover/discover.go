// Package discover finds base directories, that is, directories holding a
// manifest.json, under a set of root directories.
package discover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/assetverify/pkg/assetverify/logging"
	"github.com/jamesainslie/assetverify/pkg/assetverify/manifest"
)

var logger = logging.Get("discover")

// Options configures discovery.
type Options struct {
	// Exclude contains doublestar patterns matched against each path
	// relative to its root. Matching directories are not descended into.
	Exclude []string

	// Workers is the number of concurrent walkers. Zero lets fastwalk pick.
	Workers int
}

// Validate checks that every exclusion pattern is well formed.
func (o Options) Validate() error {
	for _, pattern := range o.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// Find walks each root and returns the sorted, de-duplicated list of
// directories containing a manifest file. Symlinks are not followed.
// Unreadable directories are logged and skipped.
func Find(ctx context.Context, roots []string, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		found = make(map[string]struct{})
	)

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: opts.Workers,
	}

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", root, err)
		}
		info, err := os.Stat(absRoot)
		if err != nil {
			return nil, fmt.Errorf("cannot access root: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root is not a directory: %s", absRoot)
		}

		walkFn := func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				logger.Warn("skipping unreadable path", "path", path, "error", err)
				return nil
			}

			if path != absRoot && excluded(absRoot, path, opts.Exclude) {
				if d.IsDir() {
					return fastwalk.SkipDir
				}
				return nil
			}

			if d.IsDir() || d.Name() != manifest.FileName {
				return nil
			}

			mu.Lock()
			found[filepath.Dir(path)] = struct{}{}
			mu.Unlock()
			return nil
		}

		if err := fastwalk.Walk(&conf, absRoot, walkFn); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("walking %s: %w", absRoot, err)
		}
	}

	dirs := make([]string, 0, len(found))
	for dir := range found {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	logger.Debug("discovery complete", "roots", len(roots), "found", len(dirs))
	return dirs, nil
}

// excluded reports whether path, taken relative to root, matches any pattern.
func excluded(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
