package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/assetverify/pkg/assetverify/config"
	"github.com/jamesainslie/assetverify/pkg/assetverify/journal"
	"github.com/jamesainslie/assetverify/pkg/assetverify/types"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View verification history",
	Long: `View the history of verification runs and file removals.

The journal stores a record of every run performed by assetverify,
including per-directory error counts and every file removed.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Long:  `Display detailed information about a run by its ID or a unique ID prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// openJournal returns the journal at the configured path.
func openJournal() (*journal.Journal, *config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	j, err := journal.New(afero.NewOsFs(), cfg.Journal.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, cfg, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	j, _, err := openJournal()
	if err != nil {
		return err
	}

	entries, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'assetverify -d <directory>' to verify assets.")
		return nil
	}

	writeHistory(cmd.OutOrStdout(), entries)
	return nil
}

// writeHistory renders the entry table.
func writeHistory(w io.Writer, entries []journal.Entry) {
	fmt.Fprintf(w, "\n%-40s  %-7s  %-5s  %-7s  %-9s  %-10s  %s\n",
		"ID", "TYPE", "DIRS", "ERRORS", "WARNINGS", "REMOVED", "WHEN")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, entry := range entries {
		removed := "-"
		if entry.Summary.TotalFiles > 0 {
			removed = types.FormatSize(entry.Summary.TotalBytes)
		}
		fmt.Fprintf(w, "%-40s  %-7s  %-5d  %-7d  %-9d  %-10s  %s\n",
			truncateString(entry.ID, 40),
			entry.Operation,
			entry.Summary.Directories,
			entry.Summary.Errors,
			entry.Summary.Warnings,
			removed,
			humanize.Time(entry.Timestamp),
		)
	}

	fmt.Fprintln(w, strings.Repeat("-", 100))
	fmt.Fprintf(w, "\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Fprintln(w, "Use 'assetverify history show <id>' for details on a specific entry.")
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	j, _, err := openJournal()
	if err != nil {
		return err
	}

	entry, err := j.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	writeEntry(cmd.OutOrStdout(), entry)
	return nil
}

// maxShownFiles caps the file list printed by history show.
const maxShownFiles = 50

// writeEntry renders a single entry with its directories and files.
func writeEntry(w io.Writer, entry *journal.Entry) {
	fmt.Fprintln(w, "\nRun Details")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "ID:          %s\n", entry.ID)
	fmt.Fprintf(w, "Timestamp:   %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Operation:   %s\n", entry.Operation)
	fmt.Fprintf(w, "Directories: %d\n", entry.Summary.Directories)
	fmt.Fprintf(w, "Errors:      %d\n", entry.Summary.Errors)
	fmt.Fprintf(w, "Warnings:    %d\n", entry.Summary.Warnings)
	if entry.Summary.TotalFiles > 0 {
		fmt.Fprintf(w, "Removed:     %d files (%s)\n", entry.Summary.TotalFiles, types.FormatSize(entry.Summary.TotalBytes))
	}

	if len(entry.Directories) > 0 {
		fmt.Fprintln(w, "\nDirectories:")
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintf(w, "%-7s  %-9s  %-8s  %s\n", "ERRORS", "WARNINGS", "REMOVED", "PATH")
		fmt.Fprintln(w, strings.Repeat("-", 60))
		for _, d := range entry.Directories {
			fmt.Fprintf(w, "%-7d  %-9d  %-8d  %s\n", d.Errors, d.Warnings, d.Removed, d.Directory)
		}
	}

	if len(entry.Files) > 0 {
		fmt.Fprintln(w, "\nFiles:")
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintf(w, "%-12s  %s\n", "SIZE", "PATH")
		fmt.Fprintln(w, strings.Repeat("-", 60))

		limit := min(len(entry.Files), maxShownFiles)
		for _, file := range entry.Files[:limit] {
			fmt.Fprintf(w, "%-12s  %s\n", types.FormatSize(file.Size), file.Path)
		}

		if len(entry.Files) > limit {
			fmt.Fprintf(w, "\n... and %d more files\n", len(entry.Files)-limit)
		}
	}
}

func runHistoryClean(cmd *cobra.Command, args []string) error {
	j, cfg, err := openJournal()
	if err != nil {
		return err
	}

	retentionDays := cfg.Journal.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := j.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("History cleanup complete: removed %d entries.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
