package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// lockID is the reserved history row that acts as the advisory lock. Real
// step identifiers are strictly positive, so it can never collide.
const lockID = 0

// Record is one row of the applied-migrations history. The key is never
// auto-assigned: step identifiers come from the sequence, and the sentinel
// lock row must land at exactly lockID, not wherever the store's counter
// happens to be.
type Record struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	Description string    `gorm:"column:description;size:256"`
	AppliedAt   time.Time `gorm:"column:applied_at;autoCreateTime"`
}

// TableName maps Record to the history table.
func (Record) TableName() string { return "schema_migrations" }

// ensureHistoryTable creates the history table if it does not exist yet.
func (a *Applier) ensureHistoryTable(ctx context.Context) error {
	m := a.db.WithContext(ctx).Migrator()
	if m.HasTable(&Record{}) {
		return nil
	}
	return m.CreateTable(&Record{})
}

// appliedSet loads the identifiers of already-applied steps.
func (a *Applier) appliedSet(ctx context.Context) (map[int]bool, error) {
	var ids []int
	err := a.db.WithContext(ctx).
		Model(&Record{}).
		Where("id > ?", lockID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	applied := make(map[int]bool, len(ids))
	for _, id := range ids {
		applied[id] = true
	}
	return applied, nil
}

// acquireLock inserts the sentinel history row. A key conflict means
// another run holds it; the store's own uniqueness check is the arbiter.
// Any other insert failure is an ordinary store problem, not contention.
func (a *Applier) acquireLock(ctx context.Context) error {
	err := a.db.WithContext(ctx).Create(&Record{
		ID:          lockID,
		Description: "advisory run lock",
	}).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConcurrentRunError{Err: err}
	default:
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
}

// releaseLock removes the sentinel row. Deliberately not bound to ctx: the
// lock must be released even when the run was cancelled.
func (a *Applier) releaseLock() {
	if err := a.db.Delete(&Record{}, "id = ?", lockID).Error; err != nil {
		a.log.Error().Err(err).Msg("failed to release migration lock")
	}
}
