package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinedex/internal/catalog"
	"cinedex/internal/dedup"
	"cinedex/internal/logging"
	"cinedex/internal/notifications"
)

type dedupReport struct {
	DryRun   bool           `json:"dryRun"`
	Snapshot string         `json:"snapshot,omitempty"`
	Groups   []dedup.Group  `json:"groups"`
	Results  []dedup.Result `json:"results,omitempty"`
}

func newDedupCommand(ctx *commandContext) *cobra.Command {
	var threshold float64
	var dryRun bool
	var requireYear bool

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Find and merge duplicate catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace(!dryRun)
			if err != nil {
				return err
			}
			defer ws.Close()

			opts := dedup.Options{
				Threshold:            ws.cfg.Dedup.Threshold,
				RequireYearAgreement: ws.cfg.Dedup.RequireYearAgreement || requireYear,
			}
			if cmd.Flags().Changed("threshold") {
				if threshold <= 0 || threshold > 1 {
					return fmt.Errorf("--threshold must be between 0 and 1")
				}
				opts.Threshold = threshold
			}

			report := dedupReport{DryRun: dryRun, Groups: dedup.FindGroups(ws.store, opts)}
			ws.logger.Info("duplicate groups found",
				logging.Int("groups", len(report.Groups)),
				logging.Float64("threshold", opts.Threshold),
				logging.Bool("dry_run", dryRun),
			)
			if !dryRun && len(report.Groups) > 0 {
				snapshot, err := ws.file.Snapshot()
				if err != nil {
					return err
				}
				report.Snapshot = snapshot
				report.Results, err = dedup.Apply(ws.store, ws.engine(), report.Groups)
				if err != nil {
					return err
				}
				forgetMergedAttempts(ws, report.Results)
				if err := ws.save(); err != nil {
					return err
				}
				publish(cmd.Context(), ws.cfg, ws.logger, notifications.EventDedupCompleted, notifications.Payload{
					"groups":  strconv.Itoa(len(report.Results)),
					"entries": strconv.Itoa(ws.store.Len()),
				})
			}
			return printDedupReport(cmd, ctx, report)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", dedup.DefaultThreshold, "Minimum title similarity for merging (0-1]")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List duplicate groups without merging")
	cmd.Flags().BoolVar(&requireYear, "require-year", false, "Never merge entries whose known years differ")
	return cmd
}

// forgetMergedAttempts moves suppression entries of merged-away keys onto the
// kept key, or drops them once the kept key is canonical.
func forgetMergedAttempts(ws *workspace, results []dedup.Result) {
	for _, res := range results {
		for _, key := range res.Removed {
			if catalog.IsCanonicalKey(res.Kept) {
				ws.attempts.Remove(key)
				continue
			}
			ws.attempts.Rekey(key, res.Kept)
		}
	}
}

func printDedupReport(cmd *cobra.Command, ctx *commandContext, report dedupReport) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, report)
	}
	out := cmd.OutOrStdout()
	if len(report.Groups) == 0 {
		fmt.Fprintln(out, "No duplicates found")
		return nil
	}
	rows := make([][]string, 0, len(report.Groups))
	for i, group := range report.Groups {
		kept := ""
		if i < len(report.Results) {
			kept = report.Results[i].Kept
		}
		detail := group.CanonicalID
		if group.Reason == dedup.ReasonTitle {
			detail = fmt.Sprintf("%.2f", group.Similarity)
		}
		rows = append(rows, []string{
			string(group.Reason),
			detail,
			strings.Join(group.Keys, ", "),
			kept,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Reason", "Detail", "Keys", "Kept"}, rows, nil, shouldColorize(out)))
	if report.DryRun {
		fmt.Fprintf(out, "%d duplicate groups (dry run, nothing merged)\n", len(report.Groups))
		return nil
	}
	if report.Snapshot != "" {
		fmt.Fprintf(out, "Snapshot written to %s\n", report.Snapshot)
	}
	fmt.Fprintf(out, "Merged %d duplicate groups\n", len(report.Results))
	return nil
}
