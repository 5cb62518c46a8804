package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sweeper/internal/executor"
	"sweeper/internal/logging"
	"sweeper/internal/notifications"
	"sweeper/internal/report"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the catalog and move duplicates to the trash",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("run moves items to the trash; pass --yes to confirm, or use `sweeper plan` to preview")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg.Notifications)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out, err := executeScan(runCtx, ctx, cfg, logger, executor.ModeLive)
			if out == nil {
				if notifyErr := notifier.NotifyRunFailed(cmd.Context(), "live run", err); notifyErr != nil {
					logger.Warn("send failure notification", logging.Error(notifyErr))
				}
				return err
			}
			if notifyErr := notifier.NotifyRunCompleted(cmd.Context(), out.Plan, out.Result); notifyErr != nil {
				logger.Warn("send completion notification", logging.Error(notifyErr))
			}

			if jsonOutput {
				if writeErr := writeJSON(cmd, out); writeErr != nil {
					return writeErr
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), report.Render(out.Plan, out.Result, renderStyle()))
				if out.ReportPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out.ReportPath)
				}
			}
			// err carries the cancellation for interrupted runs; the partial
			// result has already been rendered.
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the plan and result as JSON")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the live removal run")
	return cmd
}
