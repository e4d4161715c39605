package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cinedex/internal/catalog"
	"cinedex/internal/identity"
	"cinedex/internal/logging"
	"cinedex/internal/omdb"
)

// ConfidenceCurated marks metadata assigned by hand.
const ConfidenceCurated = "curated"

// ReasonRejected is recorded for entries whose match a curator rejected.
const ReasonRejected = "match rejected by curator"

type curateResult struct {
	Action string `json:"action"`
	From   string `json:"from"`
	To     string `json:"to"`
	Title  string `json:"title,omitempty"`
}

func newCurateCommand(ctx *commandContext) *cobra.Command {
	curateCmd := &cobra.Command{
		Use:   "curate",
		Short: "Manually correct catalog identities",
	}
	curateCmd.AddCommand(newCurateAssignCommand(ctx))
	curateCmd.AddCommand(newCurateRejectCommand(ctx))
	curateCmd.AddCommand(newCurateDetachCommand(ctx))
	return curateCmd
}

func newCurateAssignCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <key> <imdbId>",
		Short: "Attach an IMDB id to an entry and mark it verified",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, imdbID := args[0], args[1]
			if err := catalog.ValidateKey(key); err != nil {
				return err
			}
			if !catalog.IsCanonicalKey(imdbID) {
				return fmt.Errorf("%w: %q is not an IMDB id", catalog.ErrInvalidKey, imdbID)
			}
			ws, err := ctx.openWorkspace(true)
			if err != nil {
				return err
			}
			defer ws.Close()
			if !ws.store.Has(key) {
				return fmt.Errorf("curate %s: %w", key, catalog.ErrEntryNotFound)
			}

			api, closeAPI, err := openOMDB(ws.cfg, ws.logger)
			if err != nil {
				return err
			}
			defer closeAPI()
			details, err := api.FetchDetails(cmd.Context(), imdbID)
			if errors.Is(err, omdb.ErrNotFound) {
				return fmt.Errorf("curate %s: OMDB has no title %s", key, imdbID)
			}
			if err != nil {
				return err
			}

			engine := ws.engine()
			if _, err := engine.MigrateKey(ws.store, key, imdbID); err != nil {
				return err
			}
			entry, _, err := engine.Upsert(ws.store, imdbID, &catalog.Entry{
				Metadata: identity.MetadataFromDetails(details, ConfidenceCurated),
				Verified: true,
			})
			if err != nil {
				return err
			}
			ws.attempts.Remove(key)
			if err := ws.save(); err != nil {
				return err
			}
			attrs := append([]logging.Attr{
				logging.String(logging.FieldEntryKey, imdbID),
				logging.String("from_key", key),
			}, logging.DecisionAttrs("curation", "assigned", "manual override")...)
			ws.logger.Info("entry curated", logging.Args(attrs...)...)
			return printCurateResult(cmd, ctx, curateResult{Action: "assigned", From: key, To: imdbID, Title: entry.Title})
		},
	}
}

func newCurateRejectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <imdbId>",
		Short: "Detach a wrong IMDB match and return the entry to a temporary key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imdbID := args[0]
			ws, err := ctx.openWorkspace(true)
			if err != nil {
				return err
			}
			defer ws.Close()
			entry, ok := ws.store.Get(imdbID)
			if !ok {
				return fmt.Errorf("curate %s: %w", imdbID, catalog.ErrEntryNotFound)
			}
			rejectedTitle := entry.Title

			newKey, err := ws.engine().RevertToTemporary(ws.store, imdbID)
			if err != nil {
				return err
			}
			reverted, _ := ws.store.Get(newKey)
			now := time.Now().UTC()
			// suppress the entry so the next enrich does not pick the same match
			ws.attempts.Record(identity.Attempt{
				Identifier:    newKey,
				OriginalTitle: reverted.Title,
				FailedAt:      now,
				LastAttempt:   now,
				Reason:        ReasonRejected,
				Best:          &identity.BestCandidate{IMDBID: imdbID, Title: rejectedTitle},
			})
			if err := ws.save(); err != nil {
				return err
			}
			ws.logger.Info("match rejected",
				logging.String(logging.FieldEntryKey, newKey),
				logging.String("from_key", imdbID),
			)
			return printCurateResult(cmd, ctx, curateResult{Action: "rejected", From: imdbID, To: newKey, Title: reverted.Title})
		},
	}
}

func newCurateDetachCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <provider> <id>",
		Short: "Remove one provider source from whichever entry holds it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			source := catalog.SourceKey{Kind: kind, ID: strings.TrimSpace(args[1])}
			ws, err := ctx.openWorkspace(true)
			if err != nil {
				return err
			}
			defer ws.Close()

			key, ok := ws.store.FindSource(source)
			if !ok {
				return fmt.Errorf("curate detach %s: %w", source, catalog.ErrEntryNotFound)
			}
			newKey, err := ws.engine().RemoveSource(ws.store, key, source)
			if err != nil {
				return err
			}
			switch {
			case newKey == "":
				ws.attempts.Remove(key)
			case newKey != key:
				ws.attempts.Rekey(key, newKey)
			}
			if err := ws.save(); err != nil {
				return err
			}
			ws.logger.Info("source detached",
				logging.String(logging.FieldEntryKey, key),
				logging.String("source", source.String()),
				logging.String("to_key", newKey),
			)
			res := curateResult{Action: "detached " + source.String() + " from", From: key, To: newKey}
			if newKey == "" {
				res.To = "(removed)"
			} else if entry, ok := ws.store.Get(newKey); ok {
				res.Title = entry.Title
			}
			return printCurateResult(cmd, ctx, res)
		},
	}
}

func printCurateResult(cmd *cobra.Command, ctx *commandContext, res curateResult) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s", res.Action, res.From, res.To)
	if res.Title != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " (%s)", res.Title)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
