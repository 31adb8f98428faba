package migrate_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/darwinsql/darwinctl/internal/db"
	"github.com/darwinsql/darwinctl/internal/migrate"
)

func openStore(t *testing.T) *gorm.DB {
	t.Helper()
	g, err := db.Open(db.Config{
		SQLitePath: filepath.Join(t.TempDir(), "migrate_test.db"),
	})
	require.NoError(t, err)
	return g
}

func createTableStep(id int, table string) migrate.Step {
	return migrate.Step{
		ID:          id,
		Description: "create " + table,
		Run:         migrate.SQL("CREATE TABLE " + table + " (id INTEGER PRIMARY KEY)"),
	}
}

func appliedIDs(t *testing.T, g *gorm.DB) []int {
	t.Helper()
	var ids []int
	require.NoError(t, g.Model(&migrate.Record{}).Where("id > 0").Order("id").Pluck("id", &ids).Error)
	return ids
}

func TestApplyTwiceSkipsEverything(t *testing.T) {
	g := openStore(t)
	steps := []migrate.Step{
		createTableStep(1, "alpha"),
		createTableStep(2, "beta"),
		createTableStep(3, "gamma"),
	}
	applier := migrate.NewApplier(g)

	first, err := applier.Apply(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, first.Applied)
	assert.Empty(t, first.Skipped)

	second, err := applier.Apply(context.Background(), steps)
	require.NoError(t, err)
	assert.Empty(t, second.Applied)
	assert.Equal(t, []int{1, 2, 3}, second.Skipped)

	assert.Equal(t, []int{1, 2, 3}, appliedIDs(t, g))
}

func TestFailingStepHaltsRun(t *testing.T) {
	g := openStore(t)
	steps := []migrate.Step{
		createTableStep(1, "alpha"),
		{
			ID:          2,
			Description: "broken",
			Run:         migrate.SQL("THIS IS NOT SQL"),
		},
		createTableStep(3, "gamma"),
	}

	result, err := migrate.NewApplier(g).Apply(context.Background(), steps)
	require.Error(t, err)

	var storeErr *migrate.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, 2, storeErr.StepID)

	// Step 1 applied and marked, step 2 unmarked, step 3 never attempted.
	assert.Equal(t, []int{1}, result.Applied)
	assert.Equal(t, []int{1}, appliedIDs(t, g))
	assert.True(t, g.Migrator().HasTable("alpha"))
	assert.False(t, g.Migrator().HasTable("gamma"))
}

func TestFailedStepRollsBackItsOwnWork(t *testing.T) {
	g := openStore(t)
	steps := []migrate.Step{
		{
			ID:          1,
			Description: "partially broken",
			Run: migrate.SQL(
				"CREATE TABLE half_done (id INTEGER PRIMARY KEY)",
				"THIS IS NOT SQL",
			),
		},
	}

	_, err := migrate.NewApplier(g).Apply(context.Background(), steps)
	require.Error(t, err)
	assert.False(t, g.Migrator().HasTable("half_done"))
	assert.Empty(t, appliedIDs(t, g))
}

func TestValidationRejectsBadSequences(t *testing.T) {
	g := openStore(t)
	applier := migrate.NewApplier(g)
	noop := func(tx *gorm.DB) error { return nil }

	cases := map[string][]migrate.Step{
		"duplicate identifier": {
			{ID: 1, Run: noop},
			{ID: 1, Run: noop},
		},
		"descending identifier": {
			{ID: 2, Run: noop},
			{ID: 1, Run: noop},
		},
		"non-positive identifier": {
			{ID: 0, Run: noop},
		},
		"missing body": {
			{ID: 1},
		},
	}
	for name, steps := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := applier.Apply(context.Background(), steps)
			var confErr *migrate.ConfigurationError
			require.ErrorAs(t, err, &confErr)
			// Nothing may have touched the store, not even the history table.
			assert.False(t, g.Migrator().HasTable(&migrate.Record{}))
		})
	}
}

func TestHeldLockRefusesRun(t *testing.T) {
	g := openStore(t)
	applier := migrate.NewApplier(g)

	// First run creates the history table.
	_, err := applier.Apply(context.Background(), []migrate.Step{createTableStep(1, "alpha")})
	require.NoError(t, err)

	// Simulate a concurrent run holding the sentinel row.
	require.NoError(t, g.Create(&migrate.Record{ID: 0, Description: "advisory run lock"}).Error)

	_, err = applier.Apply(context.Background(), []migrate.Step{
		createTableStep(1, "alpha"),
		createTableStep(2, "beta"),
	})
	require.Error(t, err)
	assert.True(t, migrate.IsConcurrentRun(err))
	assert.False(t, g.Migrator().HasTable("beta"))

	// Released lock lets the next run proceed.
	require.NoError(t, g.Delete(&migrate.Record{}, "id = ?", 0).Error)
	result, err := applier.Apply(context.Background(), []migrate.Step{
		createTableStep(1, "alpha"),
		createTableStep(2, "beta"),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.Applied)
}

func TestLockRowNeverSurfacesAsApplied(t *testing.T) {
	g := openStore(t)

	// On a completely fresh store the lock row must not shadow the first
	// step: it has to land at its reserved identifier, stay out of the
	// applied set, and be gone once the run finishes.
	result, err := migrate.NewApplier(g).Apply(context.Background(),
		[]migrate.Step{createTableStep(1, "alpha")})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, result.Applied)
	assert.Empty(t, result.Skipped)
	assert.True(t, g.Migrator().HasTable("alpha"))

	var ids []int
	require.NoError(t, g.Model(&migrate.Record{}).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []int{1}, ids)
}

func TestLockFailureIsNotContention(t *testing.T) {
	g := openStore(t)

	// A pre-existing history table missing the description column makes
	// the lock insert fail for a reason that is not contention.
	require.NoError(t, g.Exec(
		"CREATE TABLE schema_migrations (id INTEGER PRIMARY KEY)").Error)

	_, err := migrate.NewApplier(g).Apply(context.Background(),
		[]migrate.Step{createTableStep(1, "alpha")})
	require.Error(t, err)
	assert.False(t, migrate.IsConcurrentRun(err))
	assert.Contains(t, err.Error(), "migration lock")
	assert.False(t, g.Migrator().HasTable("alpha"))
}

func TestLockReleasedAfterFailure(t *testing.T) {
	g := openStore(t)
	applier := migrate.NewApplier(g)

	_, err := applier.Apply(context.Background(), []migrate.Step{
		{ID: 1, Description: "broken", Run: migrate.SQL("THIS IS NOT SQL")},
	})
	require.Error(t, err)

	// The failed run must not leave the lock behind.
	result, err := applier.Apply(context.Background(), []migrate.Step{createTableStep(1, "alpha")})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, result.Applied)
}

func TestIncrementalAndBulkApplyConverge(t *testing.T) {
	steps := []migrate.Step{
		createTableStep(1, "alpha"),
		{
			ID:          2,
			Description: "alpha gains a column",
			Run:         migrate.SQL("ALTER TABLE alpha ADD COLUMN note TEXT"),
		},
		createTableStep(3, "beta"),
	}

	incremental := openStore(t)
	applier := migrate.NewApplier(incremental)
	_, err := applier.Apply(context.Background(), steps[:1])
	require.NoError(t, err)
	_, err = applier.Apply(context.Background(), steps[:2])
	require.NoError(t, err)
	_, err = applier.Apply(context.Background(), steps)
	require.NoError(t, err)

	bulk := openStore(t)
	_, err = migrate.NewApplier(bulk).Apply(context.Background(), steps)
	require.NoError(t, err)

	for _, g := range []*gorm.DB{incremental, bulk} {
		assert.True(t, g.Migrator().HasTable("alpha"))
		assert.True(t, g.Migrator().HasColumn("alpha", "note"))
		assert.True(t, g.Migrator().HasTable("beta"))
		assert.Equal(t, []int{1, 2, 3}, appliedIDs(t, g))
	}
}

func TestMarkingIsIdempotent(t *testing.T) {
	g := openStore(t)
	applier := migrate.NewApplier(g)

	_, err := applier.Apply(context.Background(), []migrate.Step{createTableStep(1, "alpha")})
	require.NoError(t, err)

	// A recorded identifier must make the step a no-op on every later run,
	// even when its body could not be re-run safely.
	ran := false
	steps := []migrate.Step{
		{
			ID:          1,
			Description: "would fail if re-run",
			Run: func(tx *gorm.DB) error {
				ran = true
				return tx.Exec("CREATE TABLE alpha (id INTEGER PRIMARY KEY)").Error
			},
		},
	}
	result, err := applier.Apply(context.Background(), steps)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, []int{1}, result.Skipped)
}

func TestStatusReportsAppliedState(t *testing.T) {
	g := openStore(t)
	applier := migrate.NewApplier(g)
	steps := []migrate.Step{
		createTableStep(1, "alpha"),
		createTableStep(2, "beta"),
	}

	// Before any run the history table does not exist yet.
	statuses, err := applier.Status(context.Background(), steps)
	require.NoError(t, err)
	assert.False(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)

	_, err = applier.Apply(context.Background(), steps[:1])
	require.NoError(t, err)

	statuses, err = applier.Status(context.Background(), steps)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)
}

func TestCancellationMidRunRollsBackAndStops(t *testing.T) {
	g := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	steps := []migrate.Step{
		createTableStep(1, "alpha"),
		{
			ID:          2,
			Description: "cancelled while running",
			Run: func(tx *gorm.DB) error {
				if err := tx.Exec("CREATE TABLE beta (id INTEGER PRIMARY KEY)").Error; err != nil {
					return err
				}
				cancel()
				return ctx.Err()
			},
		},
		createTableStep(3, "gamma"),
	}

	result, err := migrate.NewApplier(g).Apply(ctx, steps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// Step 2's transaction rolled back unmarked; step 3 was never attempted.
	assert.Equal(t, []int{1}, result.Applied)
	assert.Equal(t, []int{1}, appliedIDs(t, g))
	assert.False(t, g.Migrator().HasTable("beta"))
	assert.False(t, g.Migrator().HasTable("gamma"))

	// The lock was still released, so a later run finishes the sequence.
	later, err := migrate.NewApplier(g).Apply(context.Background(), []migrate.Step{
		createTableStep(1, "alpha"),
		createTableStep(3, "gamma"),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, later.Applied)
}

func TestCancelledContextAppliesNothing(t *testing.T) {
	g := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := migrate.NewApplier(g).Apply(ctx, []migrate.Step{createTableStep(1, "alpha")})
	require.Error(t, err)
	assert.False(t, g.Migrator().HasTable("alpha"))
}
