package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darwinsql/darwinctl/internal/cleanup"
	"github.com/darwinsql/darwinctl/internal/migrate"
)

func TestRenderMigrateResult(t *testing.T) {
	out := renderMigrateResult(&migrate.Result{Applied: []int{1, 2}, Skipped: []int{}})
	assert.Contains(t, out, "Applied 2 migration(s)")
	assert.Contains(t, out, "001")
	assert.Contains(t, out, "002")

	out = renderMigrateResult(&migrate.Result{Skipped: []int{1, 2, 3}})
	assert.Contains(t, out, "up to date")
	assert.Contains(t, out, "Skipped 3")
}

func TestRenderCleanupReportDryRun(t *testing.T) {
	out := renderCleanupReport(&cleanup.Report{
		Database: "darwin2",
		Matches: []cleanup.PatternMatch{{
			Pattern: "pytest-%",
			Counts: []cleanup.TableCount{
				{Table: "tasks2", Rows: 4},
				{Table: "profiles2", Rows: 2},
			},
		}},
		Total: 6,
	})
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "WOULD DELETE 4 rows from tasks2")
	assert.Contains(t, out, "Total: 6 row(s)")
	assert.Contains(t, out, "--execute")
	assert.NotContains(t, out, "DELETED ")
}

func TestRenderCleanupReportExecuted(t *testing.T) {
	out := renderCleanupReport(&cleanup.Report{
		Database: "darwin_dev",
		Matches: []cleanup.PatternMatch{{
			Pattern: "seed-%",
			Counts:  []cleanup.TableCount{{Table: "profiles", Rows: 1}},
		}},
		Executed: true,
		Total:    1,
	})
	assert.Contains(t, out, "EXECUTE")
	assert.Contains(t, out, "DELETED 1 rows from profiles")
	assert.NotContains(t, out, "--execute")
}

func TestRenderCleanupReportEmpty(t *testing.T) {
	out := renderCleanupReport(&cleanup.Report{Database: "darwin2"})
	assert.Contains(t, out, "No orphaned test data found in darwin2")
}
