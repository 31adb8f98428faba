// Package migrate applies an ordered sequence of schema-change steps to a
// relational store exactly once each, recording applied identifiers in a
// history table so repeated runs are safe.
package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Step is one schema-change step. Identifiers must be unique, positive and
// strictly ascending across a sequence. Data-repair steps are ordinary
// steps: same identifiers, same tracking, same transaction scope.
type Step struct {
	ID          int
	Description string
	Run         func(tx *gorm.DB) error
}

// SQL returns a step body that executes the given statements in order.
func SQL(stmts ...string) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		for _, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("statement %q: %w", stmt, err)
			}
		}
		return nil
	}
}

// Result reports what one Apply run did.
type Result struct {
	Applied []int // steps executed this run, in order
	Skipped []int // steps already recorded as applied
}

// StepStatus pairs a step with its applied state, for status listings.
type StepStatus struct {
	Step    Step
	Applied bool
}

// Applier runs step sequences against one store.
type Applier struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewApplier returns an Applier bound to the given store. Logging is off
// until WithLogger is called.
func NewApplier(db *gorm.DB) *Applier {
	return &Applier{db: db, log: zerolog.Nop()}
}

// WithLogger returns a copy of the Applier that logs through l.
func (a *Applier) WithLogger(l zerolog.Logger) *Applier {
	out := *a
	out.log = l
	return &out
}

// Apply runs every pending step in ascending identifier order. Each step
// executes inside one transaction together with its history record, so a
// failed step is rolled back, left unmarked, and halts the run; later steps
// are not attempted. Steps already in the history are skipped, which makes
// a fresh Apply after any failure or crash safe.
func (a *Applier) Apply(ctx context.Context, steps []Step) (*Result, error) {
	if err := validate(steps); err != nil {
		return nil, err
	}

	if err := a.ensureHistoryTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure history table: %w", err)
	}

	if err := a.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer a.releaseLock()

	applied, err := a.appliedSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load applied migrations: %w", err)
	}

	result := &Result{}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if applied[step.ID] {
			a.log.Debug().Int("step", step.ID).Str("description", step.Description).
				Msg("skipping applied migration")
			result.Skipped = append(result.Skipped, step.ID)
			continue
		}

		a.log.Info().Int("step", step.ID).Str("description", step.Description).
			Msg("applying migration")
		if err := a.applyOne(ctx, step); err != nil {
			return result, err
		}
		result.Applied = append(result.Applied, step.ID)
	}

	return result, nil
}

// applyOne runs a single step and its history insert in one transaction.
// The in-transaction history re-check makes marking idempotent: a record
// left by a crashed run that committed but was raced turns the step into a
// no-op instead of a double application.
func (a *Applier) applyOne(ctx context.Context, step Step) error {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Record{}).Where("id = ?", step.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := step.Run(tx); err != nil {
			return err
		}
		return tx.Create(&Record{ID: step.ID, Description: step.Description}).Error
	})
	if err != nil {
		a.log.Error().Int("step", step.ID).Err(err).Msg("migration step failed")
		return &StoreError{StepID: step.ID, Err: err}
	}
	return nil
}

// Status reports each step's applied state without mutating anything.
func (a *Applier) Status(ctx context.Context, steps []Step) ([]StepStatus, error) {
	if err := validate(steps); err != nil {
		return nil, err
	}

	applied := map[int]bool{}
	if a.db.WithContext(ctx).Migrator().HasTable(&Record{}) {
		var err error
		applied, err = a.appliedSet(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load applied migrations: %w", err)
		}
	}

	statuses := make([]StepStatus, 0, len(steps))
	for _, step := range steps {
		statuses = append(statuses, StepStatus{Step: step, Applied: applied[step.ID]})
	}
	return statuses, nil
}

// validate rejects malformed step sequences before any store contact.
func validate(steps []Step) error {
	prev := 0
	for i, step := range steps {
		if step.ID <= 0 {
			return &ConfigurationError{
				Detail: fmt.Sprintf("step at index %d has non-positive identifier %d", i, step.ID),
			}
		}
		if step.ID == prev {
			return &ConfigurationError{
				Detail: fmt.Sprintf("duplicate step identifier %d", step.ID),
			}
		}
		if step.ID < prev {
			return &ConfigurationError{
				Detail: fmt.Sprintf("step identifier %d is out of order after %d", step.ID, prev),
			}
		}
		if step.Run == nil {
			return &ConfigurationError{
				Detail: fmt.Sprintf("step %d has no body", step.ID),
			}
		}
		prev = step.ID
	}
	return nil
}

// IsConcurrentRun reports whether err indicates lock contention.
func IsConcurrentRun(err error) bool {
	var cre *ConcurrentRunError
	return errors.As(err, &cre)
}
