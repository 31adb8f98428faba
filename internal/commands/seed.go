package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darwinsql/darwinctl/internal/db"
	"github.com/darwinsql/darwinctl/internal/seed"
)

var flagSeedFixtures int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Provision and seed the darwin_dev database",
	Long: `Bring the darwin_dev development database up to the current schema and
seed the end-to-end test profile with its Personal domain. Re-running is a
no-op. Optional throwaway fixtures are keyed under the seed- prefix so the
cleanup command can reclaim them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openStore(seed.TargetDatabase); err != nil {
			return err
		}

		seeder := seed.New(db.DB).WithLogger(newLogger())
		summary, err := seeder.Run(cmd.Context(), seed.Options{Fixtures: flagSeedFixtures})
		if err != nil {
			return err
		}

		fmt.Printf("🌱 %s ready: %d migration(s) applied, %d skipped\n",
			seed.TargetDatabase, summary.StepsApplied, summary.StepsSkipped)
		if summary.ProfileSeeded {
			fmt.Println("Seeded E2E test profile and Personal domain.")
		} else {
			fmt.Println("E2E test profile already present.")
		}
		if summary.FixturesCreated > 0 {
			fmt.Printf("Created %d fixture(s) under the seed- prefix.\n", summary.FixturesCreated)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&flagSeedFixtures, "fixtures", 0,
		"number of throwaway fixture profiles to create")
}
