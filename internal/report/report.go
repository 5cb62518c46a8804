package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sweeper/internal/dedupe"
	"sweeper/internal/executor"
	"sweeper/internal/textutil"
)

// Style selects the table rendering target.
type Style int

const (
	// StyleTerminal renders boxed tables for interactive output.
	StyleTerminal Style = iota
	// StyleMarkdown renders pipe tables for the report file.
	StyleMarkdown
)

// Render produces the full run report. result may be nil when only a plan
// exists (plan built but nothing executed yet).
func Render(plan *dedupe.Plan, result *executor.Result, style Style) string {
	var b strings.Builder

	mode := "plan only"
	if result != nil {
		mode = string(result.Mode)
	}
	fmt.Fprintf(&b, "# Deduplication report\n\n")
	fmt.Fprintf(&b, "Run %s, %s mode, scanned %s.\n\n",
		plan.RunID, mode, plan.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Totals\n\n")
	b.WriteString(totalsTable(plan, result, style))
	b.WriteString("\n\n## Match type breakdown\n\n")
	b.WriteString(breakdownTable(plan, style))

	if len(plan.Groups) > 0 {
		b.WriteString("\n\n## Duplicate groups\n\n")
		b.WriteString(groupsTable(plan, style))
	}

	if result != nil {
		if failures := failedRemovals(result); len(failures) > 0 {
			b.WriteString("\n\n## Failed removals\n\n")
			b.WriteString(failuresTable(failures, style))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// WriteFile renders the Markdown report and writes it into dir with a
// timestamped name. Returns the written path.
func WriteFile(dir string, plan *dedupe.Plan, result *executor.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure report directory: %w", err)
	}
	name := fmt.Sprintf("dedupe-report-%s.md", plan.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(dir, textutil.SanitizeFileName(name))
	if err := os.WriteFile(path, []byte(Render(plan, result, StyleMarkdown)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func totalsTable(plan *dedupe.Plan, result *executor.Result, style Style) string {
	rows := [][]string{
		{"Items scanned", fmt.Sprintf("%d", plan.ItemsScanned)},
		{"Duplicate groups", fmt.Sprintf("%d", plan.GroupsFound)},
		{"Duplicates found", fmt.Sprintf("%d", plan.DuplicatesFound)},
		{"Space recoverable", humanize.IBytes(uint64(plan.SpaceRecoverableBytes))},
		{"Scan duration", plan.ScanDuration.Round(time.Millisecond).String()},
	}
	if result != nil {
		rows = append(rows,
			[]string{"Items removed", fmt.Sprintf("%d", result.ItemsRemoved)},
			[]string{"Items failed", fmt.Sprintf("%d", result.ItemsFailed)},
			[]string{"Space recovered", humanize.IBytes(uint64(result.BytesRecovered))},
		)
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}, style)
}

func breakdownTable(plan *dedupe.Plan, style Style) string {
	rows := make([][]string, 0, len(dedupe.MatchTypes))
	for _, matchType := range dedupe.MatchTypes {
		stats := plan.Breakdown[matchType]
		rows = append(rows, []string{
			string(matchType),
			fmt.Sprintf("%d", stats.Groups),
			fmt.Sprintf("%d", stats.Duplicates),
			humanize.IBytes(uint64(stats.Bytes)),
		})
	}
	return renderTable(
		[]string{"Match type", "Groups", "Duplicates", "Space"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
		style,
	)
}

func groupsTable(plan *dedupe.Plan, style Style) string {
	rows := make([][]string, 0, plan.DuplicatesFound+plan.GroupsFound)
	for i, group := range plan.Groups {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			"keep",
			group.Keeper.ID,
			group.Keeper.DisplayName,
			humanize.IBytes(uint64(group.Keeper.SizeBytes)),
			fmt.Sprintf("%s %.1f%%", group.MatchType, group.SimilarityScore),
			strings.Join(group.Keeper.Tags, ", "),
		})
		for _, item := range group.Remove {
			rows = append(rows, []string{
				"",
				"remove",
				item.ID,
				item.DisplayName,
				humanize.IBytes(uint64(item.SizeBytes)),
				"",
				"",
			})
		}
	}
	return renderTable(
		[]string{"Group", "Action", "ID", "Name", "Size", "Match", "Tags"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		style,
	)
}

func failedRemovals(result *executor.Result) []executor.Removal {
	var failures []executor.Removal
	for _, removal := range result.Removals {
		if removal.Status == executor.StatusFailed {
			failures = append(failures, removal)
		}
	}
	return failures
}

func failuresTable(failures []executor.Removal, style Style) string {
	rows := make([][]string, 0, len(failures))
	for _, removal := range failures {
		rows = append(rows, []string{
			removal.Item.ID,
			removal.Item.DisplayName,
			string(removal.FailureKind),
			removal.Error,
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Kind", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
		style,
	)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, style Style) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	if style == StyleMarkdown {
		return tw.RenderMarkdown()
	}
	return tw.Render()
}
