package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReport_Merge(t *testing.T) {
	a := Report{
		Errors:   []string{"e1"},
		Warnings: []string{"w1"},
	}
	b := Report{
		Errors:   []string{"e2", "e3"},
		Warnings: []string{},
		Removed:  []RemovedFile{{Path: "/x/c.txt", Size: 10}},
	}

	a.Merge(b)

	assert.Equal(t, []string{"e1", "e2", "e3"}, a.Errors)
	assert.Equal(t, []string{"w1"}, a.Warnings)
	assert.Len(t, a.Removed, 1)
	assert.Equal(t, int64(10), a.RemovedBytes())
}

func TestReport_MergeEmptyKeepsOrder(t *testing.T) {
	r := NewReport()
	r.AddWarning("File %s missing", "a/x.txt")
	r.Merge(NewReport())
	r.AddError("File %s unexpected", "a/y.txt")

	assert.Equal(t, []string{"File a/y.txt unexpected"}, r.Errors)
	assert.Equal(t, []string{"File a/x.txt missing"}, r.Warnings)
}

func TestErrorReport(t *testing.T) {
	r := ErrorReport("Manifest /tmp/x/manifest.json does not exist")

	assert.Equal(t, []string{"Manifest /tmp/x/manifest.json does not exist"}, r.Errors)
	assert.NotNil(t, r.Warnings)
	assert.Empty(t, r.Warnings)
	assert.True(t, r.HasErrors())
}

func TestAnyErrorsAndTotals(t *testing.T) {
	clean := DirectoryResult{Directory: "a", Report: Report{Warnings: []string{"w"}}}
	failed := DirectoryResult{Directory: "b", Report: ErrorReport("boom")}

	assert.False(t, AnyErrors([]DirectoryResult{clean}))
	assert.True(t, AnyErrors([]DirectoryResult{clean, failed}))
	assert.False(t, AnyErrors(nil))

	errs, warns := Totals([]DirectoryResult{clean, failed})
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warns)
}

func TestRemovedBytes(t *testing.T) {
	r := Report{Removed: []RemovedFile{
		{Path: "a", Size: 100, ModTime: time.Now()},
		{Path: "b", Size: 24},
	}}
	assert.Equal(t, int64(124), r.RemovedBytes())
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "bytes with B suffix", input: "512B", want: 512},
		{name: "kilobytes", input: "100K", want: 100 * 1024},
		{name: "megabytes with B", input: "10MB", want: 10 * 1024 * 1024},
		{name: "megabytes with iB", input: "50MiB", want: 50 * 1024 * 1024},
		{name: "gigabytes lowercase", input: "1g", want: 1024 * 1024 * 1024},
		{name: "decimal values truncated", input: "1.5G", want: 1610612736},
		{name: "surrounding whitespace", input: "  100M  ", want: 100 * 1024 * 1024},

		{name: "empty string", input: "", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-100M", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "1.5 MiB", FormatSize(1536*1024))
}
