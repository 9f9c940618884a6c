package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/folderreport/internal/dirstat"
	"github.com/idelchi/folderreport/internal/report"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs statistics in JSON format.
func PrintJSON(snap *dirstat.Snapshot, writer io.Writer) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs statistics in human-readable table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(snap *dirstat.Snapshot, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "\nTop extensions:\t\t")

	for i, stat := range snap.TopTypes(report.TopTypes) {
		fmt.Fprintf(w, "  %d) %s:\t%d files (%.1f%%),\t%s\n",
			i+1, stat.Label, stat.Count, dirstat.Percentage(stat.Count, snap.FileCount), dirstat.FormatSize(stat.Size))
	}

	fmt.Fprintln(w, "\nSize categories:\t\t")

	for _, stat := range snap.SizeStats() {
		fmt.Fprintf(w, "  %s:\t%d files (%.1f%%),\t%s\n",
			stat.Label, stat.Count, dirstat.Percentage(stat.Count, snap.FileCount), dirstat.FormatSize(stat.Size))
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Folder:\t%s\n", snap.Root)
	fmt.Fprintf(w, "Total files:\t%s\n", humanize.Comma(snap.FileCount))
	fmt.Fprintf(w, "Total size:\t%s (%s bytes)\n",
		dirstat.FormatSize(snap.TotalBytes), humanize.Comma(snap.TotalBytes))

	if len(snap.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped:\t%d\n", len(snap.Skipped))
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", snap.Elapsed)

	return w.Flush()
}
