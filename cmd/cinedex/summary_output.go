package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cinedex/internal/ingest"
)

func printSummary(cmd *cobra.Command, ctx *commandContext, summary ingest.Summary) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, summary)
	}
	out := cmd.OutOrStdout()
	title := summary.Operation
	if summary.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(out, "%s %s finished in %s\n", title, summary.RunID, summary.Duration.Round(time.Millisecond))

	rows := [][]string{
		{"processed", strconv.Itoa(summary.Processed)},
		{"matched", strconv.Itoa(summary.Matched)},
		{"unmatched", strconv.Itoa(summary.Unmatched)},
		{"skipped", strconv.Itoa(summary.Skipped)},
		{"failed", strconv.Itoa(summary.Failed)},
		{"created", strconv.Itoa(summary.Created)},
		{"updated", strconv.Itoa(summary.Updated)},
		{"migrated", strconv.Itoa(summary.Migrated)},
		{"checkpoints", strconv.Itoa(summary.Checkpoints)},
	}
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight}, shouldColorize(out)))

	if len(summary.Failures) > 0 {
		fmt.Fprintln(out, "Failures:")
		for _, reason := range summary.Failures {
			fmt.Fprintf(out, "  - %s\n", reason)
		}
		if summary.Truncated() {
			fmt.Fprintf(out, "  ... and %d more\n", summary.Failed-len(summary.Failures))
		}
	}
	return nil
}
