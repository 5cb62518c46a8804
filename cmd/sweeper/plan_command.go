package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sweeper/internal/executor"
	"sweeper/internal/logging"
	"sweeper/internal/report"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Scan the catalog and report duplicates without removing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			out, err := executeScan(cmd.Context(), ctx, cfg, logger, executor.ModeDryRun)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, out)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Render(out.Plan, out.Result, renderStyle()))
			if out.ReportPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out.ReportPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the plan and dry-run result as JSON")
	return cmd
}
