package output

import (
	"bytes"
	"fmt"
)

// PlainFormatter prints each directory's errors, then its warnings, under
// counted headers. No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, d := range r.Directories {
		fmt.Fprintf(w, "===== ERRORS (%d) =====\n", len(d.Report.Errors))
		for _, e := range d.Report.Errors {
			w.WriteString(e)
			w.WriteByte('\n')
		}

		if !r.ShowWarnings {
			continue
		}
		fmt.Fprintf(w, "===== WARNINGS (%d) =====\n", len(d.Report.Warnings))
		for _, warning := range d.Report.Warnings {
			w.WriteString(warning)
			w.WriteByte('\n')
		}
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
