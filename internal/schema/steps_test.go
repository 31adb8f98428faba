package schema_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/darwinsql/darwinctl/internal/db"
	"github.com/darwinsql/darwinctl/internal/migrate"
	"github.com/darwinsql/darwinctl/internal/models"
	"github.com/darwinsql/darwinctl/internal/schema"
)

func openStore(t *testing.T) *gorm.DB {
	t.Helper()
	g, err := db.Open(db.Config{
		SQLitePath: filepath.Join(t.TempDir(), "schema_test.db"),
	})
	require.NoError(t, err)
	return g
}

func TestSequenceBuildsFinalSchema(t *testing.T) {
	g := openStore(t)

	result, err := migrate.NewApplier(g).Apply(context.Background(), schema.Steps())
	require.NoError(t, err)
	assert.Len(t, result.Applied, 8)

	m := g.Migrator()
	for _, table := range []string{"profiles", "domains", "areas", "tasks"} {
		assert.True(t, m.HasTable(table), "missing table %s", table)
	}

	// Columns added by the evolution steps.
	assert.True(t, m.HasColumn(&models.Domain{}, "closed"))
	assert.True(t, m.HasColumn(&models.Domain{}, "sort_order"))
	assert.True(t, m.HasColumn(&models.Area{}, "closed"))
	assert.True(t, m.HasColumn(&models.Area{}, "sort_order"))
	assert.True(t, m.HasColumn(&models.Area{}, "sort_mode"))
	assert.True(t, m.HasColumn(&models.Task{}, "done_ts"))
	assert.True(t, m.HasColumn(&models.Task{}, "sort_order"))

	// The final shape must accept the application models as-is.
	profile := models.Profile{
		ID: "schema-test-1", Name: "Schema Test", Email: "schema@test.invalid",
		Subject: "schema-test-1", UserName: "schema-test-1",
		Region: "us-west-1", UserPoolID: "test-pool",
	}
	require.NoError(t, g.Create(&profile).Error)

	area := models.Area{AreaName: "Inbox", CreatorFK: profile.ID, SortMode: models.SortModePriority}
	require.NoError(t, g.Create(&area).Error)

	var got models.Area
	require.NoError(t, g.First(&got, area.ID).Error)
	assert.Equal(t, models.SortModePriority, got.SortMode)
}

func TestSequenceIsReRunnable(t *testing.T) {
	g := openStore(t)
	applier := migrate.NewApplier(g)

	_, err := applier.Apply(context.Background(), schema.Steps())
	require.NoError(t, err)

	second, err := applier.Apply(context.Background(), schema.Steps())
	require.NoError(t, err)
	assert.Empty(t, second.Applied)
	assert.Len(t, second.Skipped, 8)
}

func TestIncrementalApplyMatchesBulk(t *testing.T) {
	steps := schema.Steps()

	incremental := openStore(t)
	applier := migrate.NewApplier(incremental)
	for cut := 1; cut <= len(steps); cut++ {
		_, err := applier.Apply(context.Background(), steps[:cut])
		require.NoError(t, err)
	}

	bulk := openStore(t)
	_, err := migrate.NewApplier(bulk).Apply(context.Background(), steps)
	require.NoError(t, err)

	for _, g := range []*gorm.DB{incremental, bulk} {
		m := g.Migrator()
		assert.True(t, m.HasColumn(&models.Task{}, "done_ts"))
		assert.True(t, m.HasColumn(&models.Area{}, "sort_mode"))
		assert.True(t, m.HasColumn(&models.Domain{}, "sort_order"))
	}
}

func TestBackfillDoneTimestamps(t *testing.T) {
	g := openStore(t)
	applier := migrate.NewApplier(g)
	steps := schema.Steps()

	// Stop just before the backfill step.
	_, err := applier.Apply(context.Background(), steps[:7])
	require.NoError(t, err)

	profile := models.Profile{
		ID: "schema-test-2", Name: "Schema Test", Email: "schema@test.invalid",
		Subject: "schema-test-2", UserName: "schema-test-2",
		Region: "us-west-1", UserPoolID: "test-pool",
	}
	require.NoError(t, g.Create(&profile).Error)

	done := models.Task{Description: "finished early", Done: true, CreatorFK: profile.ID}
	open := models.Task{Description: "still open", CreatorFK: profile.ID}
	require.NoError(t, g.Create(&done).Error)
	require.NoError(t, g.Create(&open).Error)

	_, err = applier.Apply(context.Background(), steps)
	require.NoError(t, err)

	var gotDone, gotOpen models.Task
	require.NoError(t, g.First(&gotDone, done.ID).Error)
	require.NoError(t, g.First(&gotOpen, open.ID).Error)
	assert.NotNil(t, gotDone.DoneTS, "done task should be backfilled from update_ts")
	assert.Nil(t, gotOpen.DoneTS)
}
