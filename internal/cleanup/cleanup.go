// Package cleanup removes orphaned test data from a designated test
// database, and nothing else. Every destructive path sits behind
// independently checked guardrails:
//
//  1. the allowed targets are package literals, never configuration
//  2. the store's self-reported identity is verified before any delete
//  3. only the target's known tables can be named in a statement
//  4. dry-run is the default; deleting requires an explicit opt-in
//  5. the only mutation primitive is DELETE ... WHERE; the package has no
//     way to express DROP or TRUNCATE
package cleanup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/darwinsql/darwinctl/internal/db"
)

// Target binds an allowed database name to its table naming scheme. The
// only values are the package variables below; the fields are unexported so
// callers cannot aim the tool anywhere else.
type Target struct {
	database string
	suffix   string
}

// Database returns the database name this target is allowed to touch.
func (t Target) Database() string { return t.database }

var (
	// Darwin2 is the integration-test database, which duplicates the
	// production tables under a 2 suffix.
	Darwin2 = Target{database: "darwin2", suffix: "2"}

	// DarwinDev is the development database, with production-identical
	// table names.
	DarwinDev = Target{database: "darwin_dev"}
)

// TargetByName resolves a target by its database name.
func TargetByName(name string) (Target, bool) {
	switch name {
	case Darwin2.database:
		return Darwin2, true
	case DarwinDev.database:
		return DarwinDev, true
	}
	return Target{}, false
}

// entity is one table and the column its test rows are keyed by. Order in
// the slice is the FK-safe delete order: leaves before roots.
type entity struct {
	table  string
	column string
}

// entities lists the target's tables leaves-first. Base names are fixed
// here; nothing outside this list can ever appear in a statement.
func (t Target) entities() []entity {
	return []entity{
		{"tasks" + t.suffix, "creator_fk"},
		{"areas" + t.suffix, "creator_fk"},
		{"domains" + t.suffix, "creator_fk"},
		{"profiles" + t.suffix, "id"},
	}
}

// DefaultPatterns match the creator keys the test suites generate.
var DefaultPatterns = []string{
	"cognito-test-%", // identity-provider trigger tests
	"pytest-%",       // REST API tests
}

// reservedPrefixes are the only pattern shapes the tool accepts besides the
// "<suite>-test-" convention. Anything else could name real user data and
// is refused outright.
var reservedPrefixes = []string{"pytest-", "seed-"}

// Options control one cleanup run. The zero value is a dry run over
// DefaultPatterns.
type Options struct {
	Patterns []string
	Execute  bool
}

// TableCount is the number of matching rows in one table.
type TableCount struct {
	Table string
	Rows  int64
}

// PatternMatch groups the per-table counts for one pattern.
type PatternMatch struct {
	Pattern string
	Counts  []TableCount
}

// Report describes what a run deleted, or would delete in dry-run mode.
type Report struct {
	Database string
	Matches  []PatternMatch
	Executed bool
	Total    int64
}

// Tool runs guarded cleanups against one store.
type Tool struct {
	db     *gorm.DB
	target Target
	log    zerolog.Logger
}

// New returns a Tool bound to the given store and target.
func New(g *gorm.DB, target Target) *Tool {
	return &Tool{db: g, target: target, log: zerolog.Nop()}
}

// WithLogger returns a copy of the Tool that logs through l.
func (t *Tool) WithLogger(l zerolog.Logger) *Tool {
	out := *t
	out.log = l
	return &out
}

// Run checks every guardrail, counts the matching rows per table, and, only
// when opts.Execute is set, deletes them leaves-first inside a single
// transaction. Any gate failure or store error aborts the run; a failed
// execute-mode run deletes nothing.
func (t *Tool) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{}

	if t.target.database == "" {
		return report, &GuardrailViolation{
			Gate:   GateTargetIdentity,
			Detail: "no cleanup target selected",
		}
	}

	identity, err := db.Identity(t.db)
	if err != nil {
		return report, fmt.Errorf("failed to verify target database: %w", err)
	}
	report.Database = identity
	if identity != t.target.database {
		return report, &GuardrailViolation{
			Gate:   GateTargetIdentity,
			Detail: fmt.Sprintf("connected to %q, only %q is allowed", identity, t.target.database),
		}
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if !patternAllowed(p) {
			return report, &GuardrailViolation{
				Gate:   GatePatternConvention,
				Detail: fmt.Sprintf("pattern %q does not carry a reserved test prefix", p),
			}
		}
	}

	for _, p := range patterns {
		match, err := t.countPattern(ctx, p)
		if err != nil {
			return report, err
		}
		if len(match.Counts) == 0 {
			continue
		}
		report.Matches = append(report.Matches, match)
		for _, c := range match.Counts {
			report.Total += c.Rows
		}
	}

	if !opts.Execute {
		t.log.Info().Int64("rows", report.Total).Msg("dry run, nothing deleted")
		return report, nil
	}

	if err := t.deleteMatches(ctx, report); err != nil {
		return report, err
	}
	report.Executed = true
	t.log.Info().Int64("rows", report.Total).Msg("cleanup complete")
	return report, nil
}

// patternAllowed accepts LIKE patterns anchored at a reserved test prefix,
// either "<prefix>%" directly or the "<suite>-test-%" convention.
func patternAllowed(p string) bool {
	if !strings.HasSuffix(p, "%") {
		return false
	}
	prefix := strings.TrimSuffix(p, "%")
	if prefix == "" || strings.ContainsAny(prefix, "%_") {
		return false
	}
	for _, r := range reservedPrefixes {
		if prefix == r {
			return true
		}
	}
	return strings.HasSuffix(prefix, "-test-") && prefix != "-test-"
}

// countPattern reads the would-delete counts for one pattern, leaves first.
func (t *Tool) countPattern(ctx context.Context, pattern string) (PatternMatch, error) {
	match := PatternMatch{Pattern: pattern}
	for _, e := range t.target.entities() {
		var count int64
		err := t.db.WithContext(ctx).Table(e.table).
			Where(e.column+" LIKE ?", pattern).
			Count(&count).Error
		if err != nil {
			return match, fmt.Errorf("failed to count %s: %w", e.table, err)
		}
		if count > 0 {
			match.Counts = append(match.Counts, TableCount{Table: e.table, Rows: count})
		}
	}
	return match, nil
}

// deleteMatches issues the deletes for every reported match inside one
// transaction, child tables strictly before their parents. Counts in the
// report are replaced with the rows actually deleted.
func (t *Tool) deleteMatches(ctx context.Context, report *Report) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report.Total = 0
		for i := range report.Matches {
			match := &report.Matches[i]
			for j := range match.Counts {
				c := &match.Counts[j]
				e, ok := t.entityFor(c.Table)
				if !ok {
					return &GuardrailViolation{
						Gate:   GateTableAllowList,
						Detail: fmt.Sprintf("refusing to delete from unknown table %q", c.Table),
					}
				}
				res := tx.Exec(
					fmt.Sprintf("DELETE FROM %s WHERE %s LIKE ?", e.table, e.column),
					match.Pattern,
				)
				if res.Error != nil {
					return fmt.Errorf("failed to delete from %s: %w", e.table, res.Error)
				}
				t.log.Info().Str("table", e.table).Str("pattern", match.Pattern).
					Int64("rows", res.RowsAffected).Msg("deleted")
				c.Rows = res.RowsAffected
				report.Total += res.RowsAffected
			}
		}
		return nil
	})
}

func (t *Tool) entityFor(table string) (entity, bool) {
	for _, e := range t.target.entities() {
		if e.table == table {
			return e, true
		}
	}
	return entity{}, false
}
