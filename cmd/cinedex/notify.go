package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cinedex/internal/config"
	"cinedex/internal/ingest"
	"cinedex/internal/logging"
	"cinedex/internal/notifications"
)

// publish sends a notification. Delivery failures are logged, never returned.
func publish(ctx context.Context, cfg *config.Config, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := notifications.NewService(cfg).Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

// publishRun announces the outcome of an ingest or enrich run. Dry runs stay
// quiet.
func publishRun(ctx context.Context, ws *workspace, summary ingest.Summary, runErr error) {
	if summary.DryRun {
		return
	}
	// the run context may already be cancelled
	ctx = context.WithoutCancel(ctx)
	if runErr != nil {
		publish(ctx, ws.cfg, ws.logger, notifications.EventRunFailed, notifications.Payload{
			"operation": summary.Operation,
			"error":     runErr.Error(),
		})
		return
	}
	publish(ctx, ws.cfg, ws.logger, notifications.EventRunCompleted, notifications.Payload{
		"operation": summary.Operation,
		"processed": strconv.Itoa(summary.Processed),
		"matched":   strconv.Itoa(summary.Matched),
		"unmatched": strconv.Itoa(summary.Unmatched),
		"failed":    strconv.Itoa(summary.Failed),
		"duration":  summary.Duration.Round(time.Second).String(),
	})
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to the configured ntfy topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "notifications.ntfy_topic is not set; nothing sent")
				return nil
			}
			if err := notifications.NewService(cfg).Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent to %s\n", cfg.Notifications.NtfyTopic)
			return nil
		},
	}
}
