// Package types provides the core value types shared by the asset verifier:
// the verification report accumulated per directory rule and base directory,
// along with small helpers for parsing and formatting sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// RemovedFile records an unexpected file that was removed during verification.
// Removals are never reported as errors or warnings; they are kept so the
// caller can journal what was deleted.
type RemovedFile struct {
	// Path is the full path of the removed file.
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes at the time of removal.
	Size int64 `json:"size" yaml:"size"`

	// ModTime is the last modification time of the removed file.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Report accumulates the outcome of verifying one directory rule, one base
// directory, or a whole run. Errors and warnings keep their encounter order.
type Report struct {
	// Errors are the human-readable error lines.
	Errors []string `json:"errors" yaml:"errors"`

	// Warnings are the human-readable warning lines.
	Warnings []string `json:"warnings" yaml:"warnings"`

	// Removed lists files deleted because they were unexpected.
	Removed []RemovedFile `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// ErrorReport returns a report holding a single error line and nothing else.
func ErrorReport(msg string) Report {
	return Report{Errors: []string{msg}, Warnings: []string{}}
}

// NewReport returns an empty report with non-nil slices, so that it
// serializes as empty lists rather than null.
func NewReport() Report {
	return Report{Errors: []string{}, Warnings: []string{}}
}

// AddError appends an error line.
func (r *Report) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning appends a warning line.
func (r *Report) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge appends other's errors, warnings and removals after r's own.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Removed = append(r.Removed, other.Removed...)
}

// HasErrors reports whether the report contains at least one error.
func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// RemovedBytes returns the total size of all removed files.
func (r Report) RemovedBytes() int64 {
	var total int64
	for _, f := range r.Removed {
		total += f.Size
	}
	return total
}

// DirectoryResult pairs a base directory with its own report. A
// multi-directory run keeps one result per base directory.
type DirectoryResult struct {
	// Directory is the base directory as given by the caller.
	Directory string `json:"directory" yaml:"directory"`

	// Report is the verification outcome for Directory.
	Report Report `json:"report" yaml:"report"`
}

// AnyErrors reports whether any result in a run carries an error.
func AnyErrors(results []DirectoryResult) bool {
	for _, r := range results {
		if r.Report.HasErrors() {
			return true
		}
	}
	return false
}

// Totals returns the total number of errors and warnings across results.
func Totals(results []DirectoryResult) (errs, warnings int) {
	for _, r := range results {
		errs += len(r.Report.Errors)
		warnings += len(r.Report.Warnings)
	}
	return errs, warnings
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string ("512B", "10MB", "1.5G")
// and returns the size in bytes. Decimal values are truncated.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable IEC string.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
