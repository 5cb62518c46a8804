package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"sweeper/internal/config"
	"sweeper/internal/dedupe"
	"sweeper/internal/executor"
	"sweeper/internal/logging"
	"sweeper/internal/report"
)

// scanOutput bundles everything one scan produced, for both the JSON and the
// table renderings.
type scanOutput struct {
	Plan       *dedupe.Plan     `json:"plan"`
	Result     *executor.Result `json:"result"`
	ReportPath string           `json:"report_path,omitempty"`
}

// executeScan runs the full pipeline once: fetch the catalog snapshot, build
// the plan, execute it in the requested mode, and write the report file.
func executeScan(ctx context.Context, cc *commandContext, cfg *config.Config, logger *slog.Logger, mode executor.Mode) (*scanOutput, error) {
	adapter, closeAdapter, err := cc.openAdapter(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := closeAdapter(); closeErr != nil {
			logger.Warn("close catalog adapter", logging.Error(closeErr))
		}
	}()

	items, err := adapter.FetchAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog items: %w", err)
	}

	planner := dedupe.NewPlanner(dedupe.OptionsFromConfig(cfg.Dedupe), logger)
	plan, err := planner.BuildPlan(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}

	exec := executor.New(adapter, cfg.Executor.RequestsPerSecond, requestTimeout(cfg), logger)
	result, execErr := exec.Execute(ctx, plan, mode)
	if result == nil {
		return nil, execErr
	}

	out := &scanOutput{Plan: plan, Result: result}
	if path, writeErr := report.WriteFile(cfg.ReportDir, plan, result); writeErr != nil {
		logger.Warn("write report file", logging.Error(writeErr))
	} else {
		out.ReportPath = path
	}
	// A cancelled live run still reports the partial result above.
	return out, execErr
}

func requestTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Executor.RequestTimeout) * time.Second
}

// renderStyle picks boxed tables for interactive terminals and Markdown pipe
// tables when output is redirected.
func renderStyle() report.Style {
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return report.StyleTerminal
	}
	return report.StyleMarkdown
}
