package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/assetverify/pkg/assetverify/types"
	"github.com/spf13/afero"
)

// ErrNotFound is returned by Get when no entry has the requested ID.
var ErrNotFound = errors.New("journal entry not found")

// Journal manages journal entries in one directory.
type Journal struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// New creates a Journal storing entries in dir on fsys.
// The directory is not created until EnsureDir is called.
func New(fsys afero.Fs, dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal directory cannot be empty")
	}
	return &Journal{fs: fsys, dir: dir}, nil
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

// EnsureDir creates the journal directory if it does not exist.
func (j *Journal) EnsureDir() error {
	return j.fs.MkdirAll(j.dir, 0o755)
}

// LogVerify records the outcome of a verification run.
func (j *Journal) LogVerify(results []types.DirectoryResult) (*Entry, error) {
	dirs := make([]DirectorySummary, 0, len(results))
	var summary Summary
	for _, res := range results {
		dirs = append(dirs, DirectorySummary{
			Directory: res.Directory,
			Errors:    len(res.Report.Errors),
			Warnings:  len(res.Report.Warnings),
			Removed:   len(res.Report.Removed),
		})
		summary.Errors += len(res.Report.Errors)
		summary.Warnings += len(res.Report.Warnings)
		summary.TotalFiles += int64(len(res.Report.Removed))
		summary.TotalBytes += res.Report.RemovedBytes()
	}
	summary.Directories = len(results)

	return j.log(&Entry{
		Operation:   OpVerify,
		Directories: dirs,
		Summary:     summary,
	})
}

// LogDelete records files removed during a run. It returns nil, nil when
// results removed nothing.
func (j *Journal) LogDelete(results []types.DirectoryResult, trashed bool) (*Entry, error) {
	var files []FileRecord
	var totalBytes int64
	now := time.Now().UTC()
	for _, res := range results {
		for _, rm := range res.Report.Removed {
			files = append(files, FileRecord{
				Path:      rm.Path,
				Size:      rm.Size,
				ModTime:   rm.ModTime,
				Trashed:   trashed,
				DeletedAt: now,
			})
			totalBytes += rm.Size
		}
	}
	if len(files) == 0 {
		return nil, nil
	}

	return j.log(&Entry{
		Operation: OpDelete,
		Files:     files,
		Summary: Summary{
			TotalFiles: int64(len(files)),
			TotalBytes: totalBytes,
		},
	})
}

func (j *Journal) log(entry *Entry) (*Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry.ID = generateID(entry.Operation)
	entry.Timestamp = time.Now().UTC()

	if err := j.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write journal entry: %w", err)
	}
	return entry, nil
}

// writeEntry writes an entry to <id>.json via a temp file and rename.
func (j *Journal) writeEntry(entry *Entry) error {
	filePath := filepath.Join(j.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmpPath := filePath + ".tmp"
	if err := afero.WriteFile(j.fs, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := j.fs.Rename(tmpPath, filePath); err != nil {
		_ = j.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// List returns entries newest first. If limit is 0 or negative, all entries
// are returned. Unreadable entry files are skipped.
func (j *Journal) List(limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	names, err := j.entryFiles()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entry, err := j.readEntryFile(name)
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Timestamp.After(entries[b].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry with the given ID. A unique ID prefix is accepted.
func (j *Journal) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	names, err := j.entryFiles()
	if err != nil {
		return nil, err
	}

	var match string
	for _, name := range names {
		entryID := strings.TrimSuffix(name, ".json")
		if entryID == id {
			match = name
			break
		}
		if strings.HasPrefix(entryID, id) {
			if match != "" {
				return nil, fmt.Errorf("entry ID %q is ambiguous", id)
			}
			match = name
		}
	}
	if match == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return j.readEntryFile(match)
}

// Cleanup removes entries whose files are older than retentionDays and
// returns how many were removed. A non-positive retention keeps everything.
func (j *Journal) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	infos, err := afero.ReadDir(j.fs, j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read journal directory: %w", err)
	}

	removed := 0
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := j.fs.Remove(filepath.Join(j.dir, info.Name())); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// entryFiles lists the *.json files in the journal directory.
func (j *Journal) entryFiles() ([]string, error) {
	infos, err := afero.ReadDir(j.fs, j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}

func (j *Journal) readEntryFile(name string) (*Entry, error) {
	data, err := afero.ReadFile(j.fs, filepath.Join(j.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// generateID creates an ID like "verify-2026-06-15T10-30-00-1b4e28ba".
func generateID(op OperationType) string {
	ts := time.Now().UTC().Format("2006-01-02T15-04-05")
	suffix, _, _ := strings.Cut(uuid.NewString(), "-")
	return fmt.Sprintf("%s-%s-%s", op, ts, suffix)
}
