// Package watcher re-triggers verification when a base directory or one of
// its rule directories changes. Watches are non-recursive, matching what
// the verifier looks at.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/assetverify/pkg/assetverify/logging"
	"github.com/jamesainslie/assetverify/pkg/assetverify/manifest"
	"github.com/spf13/afero"
)

// Watcher maps filesystem events back to the base directories they affect.
type Watcher struct {
	fs      afero.Fs
	watcher *fsnotify.Watcher
	// owners maps each watched directory to the base directories that
	// care about it. Overlapping rules can share a directory.
	owners map[string]map[string]bool
	mu     sync.RWMutex
	closed bool
	logger *logging.Logger
}

// New creates a Watcher. fsys is used to read manifests and must be backed
// by the OS filesystem for events to arrive.
func New(fsys afero.Fs) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fs:      fsys,
		watcher: fsw,
		owners:  make(map[string]map[string]bool),
		logger:  logging.Get("watcher"),
	}, nil
}

// Watch starts watching baseDir and every rule directory its manifest
// names. A base directory whose manifest cannot be loaded is still watched
// so that creating or fixing the manifest triggers a run.
func (w *Watcher) Watch(baseDir string) error {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return err
	}

	if err := w.addWatch(absBase, baseDir); err != nil {
		return err
	}

	m, err := manifest.Load(w.fs, absBase)
	if err != nil {
		if !manifest.IsStructural(err) {
			return fmt.Errorf("loading manifest for %s: %w", baseDir, err)
		}
		w.logger.Debug("watching base directory without manifest", "dir", baseDir, "reason", err)
		return nil
	}

	for _, group := range m.EntityGroups {
		for _, rule := range group.Directories {
			ruleDir := filepath.Join(absBase, rule.Path)
			info, err := os.Lstat(ruleDir)
			if err != nil || !info.IsDir() {
				// Created later; the base directory watch picks that up.
				continue
			}
			if err := w.addWatch(ruleDir, baseDir); err != nil {
				return err
			}
		}
	}
	return nil
}

// addWatch registers dir as relevant to owner.
func (w *Watcher) addWatch(dir, owner string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	if owners, ok := w.owners[dir]; ok {
		owners[owner] = true
		return nil
	}

	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("failed to add watch", "path", dir, "error", err)
		return err
	}

	w.owners[dir] = map[string]bool{owner: true}
	return nil
}

// WatchedDirs returns the sorted list of watched directories.
func (w *Watcher) WatchedDirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	dirs := make([]string, 0, len(w.owners))
	for dir := range w.owners {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// affected returns the base directories an event on path concerns.
func (w *Watcher) affected(path string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	seen := make(map[string]bool)
	for _, dir := range []string{filepath.Dir(path), path} {
		for owner := range w.owners[dir] {
			seen[owner] = true
		}
	}

	owners := make([]string, 0, len(seen))
	for owner := range seen {
		owners = append(owners, owner)
	}
	return owners
}

// Run collects events until ctx is cancelled. Once no event has arrived
// for debounce, onChange is called with the sorted base directories
// touched since the last call. Watches are refreshed before onChange so
// new rule directories are picked up.
func (w *Watcher) Run(ctx context.Context, debounce time.Duration, onChange func(dirs []string)) {
	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			owners := w.affected(event.Name)
			if len(owners) == 0 {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			for _, owner := range owners {
				pending[owner] = true
			}
			timer.Reset(debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			dirs := make([]string, 0, len(pending))
			for dir := range pending {
				dirs = append(dirs, dir)
				if err := w.Watch(dir); err != nil {
					w.logger.Warn("failed to refresh watches", "dir", dir, "error", err)
				}
			}
			sort.Strings(dirs)
			pending = make(map[string]bool)
			onChange(dirs)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.owners = make(map[string]map[string]bool)
	return w.watcher.Close()
}
