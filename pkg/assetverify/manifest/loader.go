package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jamesainslie/assetverify/pkg/assetverify/logging"
	"github.com/spf13/afero"
)

var logger = logging.Get("manifest")

// StructuralKind classifies a StructuralError.
type StructuralKind int

const (
	// KindDirectoryMissing means the base directory does not exist.
	KindDirectoryMissing StructuralKind = iota
	// KindManifestMissing means the base directory has no manifest file.
	KindManifestMissing
	// KindManifestMalformed means the manifest is not valid JSON or does not
	// match the manifest schema.
	KindManifestMalformed
)

func (k StructuralKind) String() string {
	switch k {
	case KindDirectoryMissing:
		return "directory missing"
	case KindManifestMissing:
		return "manifest missing"
	case KindManifestMalformed:
		return "manifest malformed"
	default:
		return "unknown"
	}
}

// StructuralError reports a base directory that cannot be verified at all.
// Its message is the single line shown to the user for that directory.
type StructuralError struct {
	Kind StructuralKind
	Path string
}

func (e *StructuralError) Error() string {
	switch e.Kind {
	case KindDirectoryMissing:
		return fmt.Sprintf("Directory %s does not exist", e.Path)
	case KindManifestMissing:
		return fmt.Sprintf("Manifest %s does not exist", e.Path)
	case KindManifestMalformed:
		return fmt.Sprintf("Manifest %s is malformed", e.Path)
	default:
		return fmt.Sprintf("Manifest %s is unusable", e.Path)
	}
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// Path returns the manifest path for a base directory.
func Path(baseDir string) string {
	return filepath.Join(baseDir, FileName)
}

// Load reads and validates the manifest of baseDir. Failures that make the
// directory unverifiable are returned as *StructuralError; other I/O
// failures are returned wrapped and should abort the run.
func Load(fsys afero.Fs, baseDir string) (*Manifest, error) {
	info, err := fsys.Stat(baseDir)
	if err != nil {
		if notExist(err) {
			return nil, &StructuralError{Kind: KindDirectoryMissing, Path: baseDir}
		}
		return nil, fmt.Errorf("stat base directory %s: %w", baseDir, err)
	}
	if !info.IsDir() {
		return nil, &StructuralError{Kind: KindDirectoryMissing, Path: baseDir}
	}

	manifestPath := Path(baseDir)
	data, err := afero.ReadFile(fsys, manifestPath)
	if err != nil {
		if notExist(err) {
			return nil, &StructuralError{Kind: KindManifestMissing, Path: manifestPath}
		}
		return nil, fmt.Errorf("reading manifest %s: %w", manifestPath, err)
	}

	return Parse(data, manifestPath)
}

// Parse validates and decodes manifest JSON. source names the document in
// the returned StructuralError.
func Parse(data []byte, source string) (*Manifest, error) {
	malformed := &StructuralError{Kind: KindManifestMalformed, Path: source}

	if !json.Valid(data) {
		logger.Debug("manifest is not valid JSON", "path", source)
		return nil, malformed
	}

	violations, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		for _, v := range violations {
			logger.Debug("manifest schema violation", "path", source, "field", v.Field, "message", v.Message)
		}
		return nil, malformed
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Debug("manifest decode failed", "path", source, "error", err)
		return nil, malformed
	}

	return &m, nil
}

func notExist(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
