package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Directories []jsonDirectory `json:"directories"`
	Summary     jsonSummary     `json:"summary"`
}

type jsonDirectory struct {
	Directory string        `json:"directory"`
	Passed    bool          `json:"passed"`
	Errors    []string      `json:"errors"`
	Warnings  []string      `json:"warnings,omitempty"`
	Removed   []jsonRemoved `json:"removed,omitempty"`
}

type jsonRemoved struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	ModTime   time.Time `json:"mod_time"`
}

type jsonSummary struct {
	Directories  int    `json:"directories"`
	Errors       int    `json:"errors"`
	Warnings     int    `json:"warnings"`
	RemovedFiles int    `json:"removed_files"`
	RemovedBytes int64  `json:"removed_bytes"`
	Failed       bool   `json:"failed"`
	Duration     string `json:"duration,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
// Warnings are omitted when the result hides them.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildJSON(r))
}

func buildJSON(r *Result) jsonOutput {
	dirs := make([]jsonDirectory, len(r.Directories))
	for i, d := range r.Directories {
		jd := jsonDirectory{
			Directory: d.Directory,
			Passed:    !d.Report.HasErrors(),
			Errors:    nonNil(d.Report.Errors),
		}
		if r.ShowWarnings {
			jd.Warnings = d.Report.Warnings
		}
		for _, rm := range d.Report.Removed {
			jd.Removed = append(jd.Removed, jsonRemoved{
				Path:      rm.Path,
				Size:      rm.Size,
				SizeHuman: formatSize(rm.Size),
				ModTime:   rm.ModTime,
			})
		}
		dirs[i] = jd
	}

	summary := jsonSummary{
		Directories:  len(r.Directories),
		Errors:       r.TotalErrors(),
		RemovedFiles: r.RemovedFiles(),
		RemovedBytes: r.RemovedBytes(),
		Failed:       r.Failed(),
		Duration:     formatDurationString(r.Duration),
	}
	if r.ShowWarnings {
		summary.Warnings = r.TotalWarnings()
	}

	return jsonOutput{Directories: dirs, Summary: summary}
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// formatDurationString formats a duration as a string for structured output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
