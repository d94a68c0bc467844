// Package journal records what assetverify did: one entry per verification
// run and one per batch of removed files. Entries are JSON files in a
// journal directory, newest listed first.
package journal

import "time"

// OperationType represents the type of operation.
type OperationType string

const (
	// OpVerify records a verification run.
	OpVerify OperationType = "verify"
	// OpDelete records unexpected files removed during a run.
	OpDelete OperationType = "delete"
)

// Entry represents a single journal entry.
type Entry struct {
	ID          string             `json:"id" yaml:"id"`
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Operation   OperationType      `json:"operation" yaml:"operation"`
	Directories []DirectorySummary `json:"directories,omitempty" yaml:"directories,omitempty"`
	Files       []FileRecord       `json:"files,omitempty" yaml:"files,omitempty"`
	Summary     Summary            `json:"summary" yaml:"summary"`
}

// DirectorySummary is the outcome of verifying one base directory.
type DirectorySummary struct {
	Directory string `json:"directory" yaml:"directory"`
	Errors    int    `json:"errors" yaml:"errors"`
	Warnings  int    `json:"warnings" yaml:"warnings"`
	Removed   int    `json:"removed" yaml:"removed"`
}

// FileRecord is a removed file.
type FileRecord struct {
	Path      string    `json:"path" yaml:"path"`
	Size      int64     `json:"size" yaml:"size"`
	ModTime   time.Time `json:"mod_time" yaml:"mod_time"`
	Trashed   bool      `json:"trashed,omitempty" yaml:"trashed,omitempty"`
	DeletedAt time.Time `json:"deleted_at" yaml:"deleted_at"`
}

// Summary contains operation totals.
type Summary struct {
	Directories int   `json:"directories,omitempty" yaml:"directories,omitempty"`
	Errors      int   `json:"errors" yaml:"errors"`
	Warnings    int   `json:"warnings" yaml:"warnings"`
	TotalFiles  int64 `json:"total_files" yaml:"total_files"`
	TotalBytes  int64 `json:"total_bytes" yaml:"total_bytes"`
}
