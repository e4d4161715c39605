package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinedex/internal/catalog"
)

type validateReport struct {
	Entries  int               `json:"entries"`
	Problems []catalog.Problem `json:"problems"`
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the catalog store for invariant violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace(false)
			if err != nil {
				return err
			}
			defer ws.Close()

			report := validateReport{Entries: ws.store.Len(), Problems: catalog.Validate(ws.store)}
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, problem := range report.Problems {
					fmt.Fprintln(out, problem.String())
				}
				if len(report.Problems) == 0 {
					fmt.Fprintf(out, "Store valid (%d entries)\n", report.Entries)
				}
			}
			if len(report.Problems) > 0 {
				return fmt.Errorf("store has %d problems", len(report.Problems))
			}
			return nil
		},
	}
}
