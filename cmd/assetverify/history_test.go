package main

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/jamesainslie/assetverify/pkg/assetverify/journal"
	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateString(tt.input, tt.maxLen))
		})
	}
}

func TestWriteHistory(t *testing.T) {
	entries := []journal.Entry{
		{
			ID:        "delete-2026-01-02T10-00-00-abcd1234",
			Timestamp: time.Now().Add(-time.Hour),
			Operation: journal.OpDelete,
			Summary:   journal.Summary{TotalFiles: 2, TotalBytes: 2048},
		},
		{
			ID:        "verify-2026-01-02T10-00-00-ef567890",
			Timestamp: time.Now().Add(-time.Hour),
			Operation: journal.OpVerify,
			Summary:   journal.Summary{Directories: 3, Errors: 4, Warnings: 1},
		},
	}

	var buf bytes.Buffer
	writeHistory(&buf, entries)
	out := buf.String()

	assert.Contains(t, out, "delete-2026-01-02T10-00-00-abcd1234")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "verify-2026-01-02T10-00-00-ef567890")
	assert.Contains(t, out, "1 hour ago")
	assert.Contains(t, out, "Showing 2 entries")
}

func TestWriteEntry(t *testing.T) {
	entry := &journal.Entry{
		ID:        "verify-2026-01-02T10-00-00-ef567890",
		Timestamp: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		Operation: journal.OpVerify,
		Directories: []journal.DirectorySummary{
			{Directory: "/assets/chars", Errors: 2, Warnings: 1},
		},
		Summary: journal.Summary{Directories: 1, Errors: 2, Warnings: 1},
	}

	var buf bytes.Buffer
	writeEntry(&buf, entry)
	out := buf.String()

	assert.Contains(t, out, "2026-01-02 10:00:00 UTC")
	assert.Contains(t, out, "/assets/chars")
	assert.NotContains(t, out, "Removed:")
	assert.NotContains(t, out, "Files:")
}

func TestWriteEntry_LimitsFiles(t *testing.T) {
	entry := &journal.Entry{
		ID:        "delete-2026-01-02T10-00-00-abcd1234",
		Operation: journal.OpDelete,
	}
	for i := range maxShownFiles + 5 {
		entry.Files = append(entry.Files, journal.FileRecord{
			Path: fmt.Sprintf("/assets/files/stray%02d.txt", i),
			Size: 1024,
		})
	}
	entry.Summary = journal.Summary{TotalFiles: int64(len(entry.Files)), TotalBytes: int64(len(entry.Files)) * 1024}

	var buf bytes.Buffer
	writeEntry(&buf, entry)
	out := buf.String()

	assert.Contains(t, out, "Removed:     55 files")
	assert.Contains(t, out, "stray49.txt")
	assert.NotContains(t, out, "stray50.txt")
	assert.Contains(t, out, "... and 5 more files")
}
