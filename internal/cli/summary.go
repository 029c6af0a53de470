package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/engine"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
)

// RenderAuditSummary formats the per-flag breakdown of a finished audit as
// a terminal table.
func RenderAuditSummary(summary engine.Summary) string {
	type row struct {
		flag  model.AuditFlag
		total engine.FlagTotal
	}
	rows := make([]row, 0, len(summary.ByFlag))
	for flag, total := range summary.ByFlag {
		rows = append(rows, row{flag, total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total.Count != rows[j].total.Count {
			return rows[i].total.Count > rows[j].total.Count
		}
		return rows[i].flag < rows[j].flag
	})

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-22s %8s %16s", "Flag", "Rows", "Total Billed")))
	b.WriteString("\n")
	for _, r := range rows {
		line := fmt.Sprintf("%-22s %8d %16.2f", r.flag, r.total.Count, r.total.Billed)
		if r.flag.NeedsReview() {
			b.WriteString(WarningStyle.Render(line))
		} else {
			b.WriteString(SuccessStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(SubtleStyle.Render(strings.Repeat("─", 48)))
	b.WriteString("\n")
	b.WriteString(BoldStyle.Render(fmt.Sprintf("%-22s %8d %16.2f", "TOTAL", summary.Total, summary.TotalBilled)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Clean matches (current + unchanged): %d\n", summary.CleanMatches))
	return b.String()
}

// RenderWarnings formats the aggregated advisory warnings for the operator.
func RenderWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(FormatWarning(fmt.Sprintf("%d warning(s) during this run:", len(warnings))))
	b.WriteString("\n")
	for _, warning := range warnings {
		b.WriteString(WarningStyle.Render("  • " + warning))
		b.WriteString("\n")
	}
	return b.String()
}
