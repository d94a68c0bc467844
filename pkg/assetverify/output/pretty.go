package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// PrettyFormatter renders each base directory as a styled block with a
// summary footer, for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	for i, d := range r.Directories {
		if i > 0 {
			w.WriteString("\n")
		}
		w.WriteString(f.formatHeader(d.Directory, len(d.Report.Errors)))
		w.WriteString("\n")

		f.writeSection(w, "Errors", d.Report.Errors, ErrorStyle)
		if r.ShowWarnings {
			f.writeSection(w, "Warnings", d.Report.Warnings, WarningStyle)
		}
		if len(d.Report.Removed) > 0 {
			w.WriteString(MutedStyle.Bold(true).Render(fmt.Sprintf("Removed (%d):", len(d.Report.Removed))))
			w.WriteString("\n")
			for _, rm := range d.Report.Removed {
				size := padLeft(humanize.IBytes(uint64(rm.Size)), 8)
				w.WriteString("  " + SizeStyle.Render(size) + "  " + MutedStyle.Render(rm.Path) + "\n")
			}
		}
	}

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

// formatHeader builds the heading box for one base directory.
func (f *PrettyFormatter) formatHeader(dir string, errs int) string {
	status := SuccessStyle.Render("ok")
	if errs > 0 {
		status = ErrorStyle.Bold(true).Render("failed")
	}
	return HeaderBox.Render(PathStyle.Render(dir) + "  " + status)
}

func (f *PrettyFormatter) writeSection(w *bytes.Buffer, title string, lines []string, style lipgloss.Style) {
	if len(lines) == 0 {
		return
	}
	w.WriteString(LabelStyle.Bold(true).Render(fmt.Sprintf("%s (%d):", title, len(lines))))
	w.WriteString("\n")
	for _, line := range lines {
		w.WriteString(style.Render("  " + line))
		w.WriteString("\n")
	}
}

// formatFooter builds the run summary box.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	parts = append(parts, LabelStyle.Render("Directories:")+" "+ValueStyle.Render(fmt.Sprintf("%d", len(r.Directories))))

	errStyle := SuccessStyle
	if r.TotalErrors() > 0 {
		errStyle = ErrorStyle
	}
	parts = append(parts, LabelStyle.Render("Errors:")+" "+errStyle.Render(fmt.Sprintf("%d", r.TotalErrors())))

	if r.ShowWarnings {
		parts = append(parts, LabelStyle.Render("Warnings:")+" "+WarningStyle.Render(fmt.Sprintf("%d", r.TotalWarnings())))
	}

	if r.DeleteUnexpected {
		removed := fmt.Sprintf("%d (%s)", r.RemovedFiles(), humanize.IBytes(uint64(r.RemovedBytes())))
		parts = append(parts, LabelStyle.Render("Removed:")+" "+SizeStyle.Render(removed))
	}

	if r.Duration > 0 {
		parts = append(parts, MutedStyle.Render(formatDuration(r.Duration)))
	}

	return FooterBox.Render(strings.Join(parts, "  "))
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
