// Package verifier reconciles the files expected by one directory rule
// against what is actually present on disk.
package verifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jamesainslie/assetverify/pkg/assetverify/logging"
	"github.com/jamesainslie/assetverify/pkg/assetverify/manifest"
	"github.com/jamesainslie/assetverify/pkg/assetverify/types"
	"github.com/spf13/afero"
)

// Remover deletes a single file. It is called only for unexpected files
// when deletion is enabled.
type Remover interface {
	Remove(path string) error
}

// FsRemover removes files through an afero.Fs.
type FsRemover struct {
	Fs afero.Fs
}

// Remove implements Remover.
func (r FsRemover) Remove(path string) error {
	return r.Fs.Remove(path)
}

// Verifier checks directory rules against a filesystem.
type Verifier struct {
	fs      afero.Fs
	remover Remover
	logger  *logging.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithRemover sets how unexpected files are deleted. The default removes
// them through the verifier's filesystem.
func WithRemover(r Remover) Option {
	return func(v *Verifier) {
		v.remover = r
	}
}

// New creates a Verifier reading from fsys.
func New(fsys afero.Fs, opts ...Option) *Verifier {
	v := &Verifier{
		fs:     fsys,
		logger: logging.Get("verifier"),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.remover == nil {
		v.remover = FsRemover{Fs: fsys}
	}
	return v
}

// VerifyDirectory checks the directory named by rule under baseDir against
// the files expected for entities.
//
// Missing files are errors when the rule is required and warnings otherwise;
// ignored entities are never reported missing, but their presence is a
// warning. Files that no entity accounts for are errors, or are removed
// silently when deleteUnexpected is set. Errors listing the directory or
// removing a file are returned as-is and are not part of the report.
func (v *Verifier) VerifyDirectory(baseDir string, entities []string, rule manifest.DirectoryRule, deleteUnexpected bool) (types.Report, error) {
	report := types.NewReport()
	actualDir := filepath.Join(baseDir, rule.Path)
	logger := v.logger.With("base", baseDir, "path", rule.Path)

	isDir, err := afero.IsDir(v.fs, actualDir)
	if err != nil && !notExist(err) {
		return report, fmt.Errorf("stat %s: %w", actualDir, err)
	}
	if !isDir {
		report.AddError("Directory %s does not exist", rule.Path)
		return report, nil
	}

	entries, err := afero.ReadDir(v.fs, actualDir)
	if err != nil {
		return report, fmt.Errorf("listing %s: %w", actualDir, err)
	}

	// Listing order is kept separately so unexpected files are reported in
	// the order the directory returned them.
	seen := make(map[string]bool, len(entries))
	files := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		seen[entry.Name()] = false
		files = append(files, entry)
	}

	ignored := rule.IgnoredSet()

	for _, entity := range entities {
		fileName := rule.ExpectedFileName(entity)
		display := filepath.Join(rule.Path, fileName)
		_, isIgnored := ignored[entity]

		if _, present := seen[fileName]; !present {
			switch {
			case isIgnored:
			case rule.Required:
				report.AddError("File %s missing", display)
			default:
				report.AddWarning("File %s missing", display)
			}
			continue
		}

		seen[fileName] = true
		if isIgnored {
			report.AddWarning("File %s ignored but is present", display)
		}
	}

	for _, file := range files {
		if seen[file.Name()] {
			continue
		}

		if !deleteUnexpected {
			report.AddError("File %s unexpected", filepath.Join(rule.Path, file.Name()))
			continue
		}

		fullPath := filepath.Join(actualDir, file.Name())
		if err := v.remover.Remove(fullPath); err != nil {
			return report, fmt.Errorf("removing unexpected file %s: %w", fullPath, err)
		}
		logger.Info("removed unexpected file", "file", fullPath, "size", file.Size())
		report.Removed = append(report.Removed, types.RemovedFile{
			Path:    fullPath,
			Size:    file.Size(),
			ModTime: file.ModTime(),
		})
	}

	logger.Debug("verified directory",
		"entities", len(entities),
		"files", len(files),
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"removed", len(report.Removed),
	)

	return report, nil
}

// notExist reports whether err means the path is absent, including a path
// whose parent component is a regular file.
func notExist(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
