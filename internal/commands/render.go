package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/darwinsql/darwinctl/internal/cleanup"
	"github.com/darwinsql/darwinctl/internal/migrate"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dryRunStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderMigrateResult summarizes an apply run.
func renderMigrateResult(result *migrate.Result) string {
	var b strings.Builder
	if len(result.Applied) == 0 {
		b.WriteString(okStyle.Render("Schema is up to date.") + "\n")
	} else {
		b.WriteString(okStyle.Render(fmt.Sprintf("Applied %d migration(s):", len(result.Applied))) + "\n")
		for _, id := range result.Applied {
			b.WriteString(fmt.Sprintf("  ✓ %03d\n", id))
		}
	}
	if len(result.Skipped) > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Skipped %d already-applied migration(s).", len(result.Skipped))) + "\n")
	}
	return b.String()
}

// renderCleanupReport formats the per-pattern, per-table counts the way the
// operator reads them: what was (or would be) deleted, leaves first.
func renderCleanupReport(report *cleanup.Report) string {
	var b strings.Builder

	mode := dryRunStyle.Render("DRY RUN")
	verb := "WOULD DELETE"
	if report.Executed {
		mode = okStyle.Render("EXECUTE")
		verb = "DELETED"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s cleanup (%s)", report.Database, mode)) + "\n")

	if len(report.Matches) == 0 {
		b.WriteString(fmt.Sprintf("No orphaned test data found in %s.\n", report.Database))
		return b.String()
	}

	for _, match := range report.Matches {
		b.WriteString(fmt.Sprintf("  Pattern: %s\n", match.Pattern))
		for _, c := range match.Counts {
			b.WriteString(fmt.Sprintf("    %s %d rows from %s\n", verb, c.Rows, c.Table))
		}
	}
	b.WriteString(fmt.Sprintf("Total: %d row(s)\n", report.Total))
	if !report.Executed {
		b.WriteString(dryRunStyle.Render("Run with --execute to actually delete these rows.") + "\n")
	}
	return b.String()
}
