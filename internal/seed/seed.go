// Package seed provisions the darwin_dev development database: schema via
// the migration sequence, the pre-provisioned end-to-end test profile, and
// optional throwaway fixtures.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/darwinsql/darwinctl/internal/db"
	"github.com/darwinsql/darwinctl/internal/migrate"
	"github.com/darwinsql/darwinctl/internal/models"
	"github.com/darwinsql/darwinctl/internal/schema"
)

// TargetDatabase is the only database this package will seed.
const TargetDatabase = "darwin_dev"

// The end-to-end test user, pre-provisioned so E2E runs need no real
// identity-provider signup.
var e2eProfile = models.Profile{
	ID:         "42145f1d-e6dc-4d83-ad1c-1adac53fcbc9",
	Name:       "E2E Test User",
	Email:      "e2e-test@test.invalid",
	Subject:    "42145f1d-e6dc-4d83-ad1c-1adac53fcbc9",
	UserName:   "e2e-test-user",
	Region:     "us-west-1",
	UserPoolID: "us-west-1_jqN0WLASK",
}

// Options control one seeding run. Fixtures asks for that many throwaway
// profiles, each with a domain, an area and a couple of tasks, keyed under
// the seed- prefix so cleanup can reclaim them.
type Options struct {
	Fixtures int
}

// Summary reports what a seeding run did.
type Summary struct {
	StepsApplied    int
	StepsSkipped    int
	ProfileSeeded   bool
	DomainSeeded    bool
	FixturesCreated int
}

// Seeder provisions one store.
type Seeder struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New returns a Seeder bound to the given store.
func New(g *gorm.DB) *Seeder {
	return &Seeder{db: g, log: zerolog.Nop()}
}

// WithLogger returns a copy of the Seeder that logs through l.
func (s *Seeder) WithLogger(l zerolog.Logger) *Seeder {
	out := *s
	out.log = l
	return &out
}

// Run verifies the store identity, brings the schema up to date, and seeds
// the E2E profile with its Personal domain. Re-running is a no-op.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	identity, err := db.Identity(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to verify target database: %w", err)
	}
	if identity != TargetDatabase {
		return nil, fmt.Errorf("connected to %q, refusing to seed anything but %q", identity, TargetDatabase)
	}

	result, err := migrate.NewApplier(s.db).WithLogger(s.log).Apply(ctx, schema.Steps())
	if err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", TargetDatabase, err)
	}

	summary := &Summary{
		StepsApplied: len(result.Applied),
		StepsSkipped: len(result.Skipped),
	}

	if err := s.seedE2EUser(ctx, summary); err != nil {
		return nil, err
	}
	if err := s.seedFixtures(ctx, opts.Fixtures, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// seedE2EUser creates the E2E profile and its Personal domain if absent.
func (s *Seeder) seedE2EUser(ctx context.Context, summary *Summary) error {
	g := s.db.WithContext(ctx)

	profile := e2eProfile
	res := g.Where("id = ?", profile.ID).FirstOrCreate(&profile)
	if res.Error != nil {
		return fmt.Errorf("failed to seed E2E profile: %w", res.Error)
	}
	summary.ProfileSeeded = res.RowsAffected > 0

	// What the identity-provider trigger would create on first login.
	domain := models.Domain{DomainName: "Personal", CreatorFK: profile.ID}
	res = g.Where("domain_name = ? AND creator_fk = ?", domain.DomainName, profile.ID).
		FirstOrCreate(&domain)
	if res.Error != nil {
		return fmt.Errorf("failed to seed Personal domain: %w", res.Error)
	}
	summary.DomainSeeded = res.RowsAffected > 0

	if summary.ProfileSeeded {
		s.log.Info().Str("profile", profile.ID).Msg("seeded E2E profile")
	} else {
		s.log.Info().Str("profile", profile.ID).Msg("E2E profile already present")
	}
	return nil
}

// seedFixtures creates n throwaway ownership chains under seed- keys.
func (s *Seeder) seedFixtures(ctx context.Context, n int, summary *Summary) error {
	g := s.db.WithContext(ctx)

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("seed-%s", uuid.NewString())
		profile := models.Profile{
			ID:         key,
			Name:       fmt.Sprintf("Seed Fixture %d", i+1),
			Email:      fmt.Sprintf("%s@test.invalid", key),
			Subject:    key,
			UserName:   key,
			Region:     "us-west-1",
			UserPoolID: "seed-pool",
		}
		if err := g.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create fixture profile: %w", err)
		}

		domain := models.Domain{DomainName: "Personal", CreatorFK: key}
		if err := g.Create(&domain).Error; err != nil {
			return fmt.Errorf("failed to create fixture domain: %w", err)
		}
		area := models.Area{
			AreaName:  "Inbox",
			DomainFK:  &domain.ID,
			CreatorFK: key,
			SortMode:  models.SortModePriority,
		}
		if err := g.Create(&area).Error; err != nil {
			return fmt.Errorf("failed to create fixture area: %w", err)
		}
		tasks := []models.Task{
			{Description: "Try the priority flag", Priority: true, AreaFK: &area.ID, CreatorFK: key},
			{Description: "Mark something done", AreaFK: &area.ID, CreatorFK: key},
		}
		if err := g.Create(&tasks).Error; err != nil {
			return fmt.Errorf("failed to create fixture tasks: %w", err)
		}
		summary.FixturesCreated++
	}
	return nil
}
