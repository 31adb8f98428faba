package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darwinsql/darwinctl/internal/db"
	"github.com/darwinsql/darwinctl/internal/migrate"
	"github.com/darwinsql/darwinctl/internal/schema"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply the Darwin schema migration sequence to the target store.
Steps already recorded in the schema_migrations history are skipped, so
re-running after a failure or crash is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openStore(flagDatabase); err != nil {
			return err
		}

		applier := migrate.NewApplier(db.DB).WithLogger(newLogger())
		result, err := applier.Apply(cmd.Context(), schema.Steps())
		if err != nil {
			if migrate.IsConcurrentRun(err) {
				return fmt.Errorf("%w\nanother run holds the migration lock; retry once it finishes", err)
			}
			return err
		}

		fmt.Print(renderMigrateResult(result))
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations have been applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openStore(flagDatabase); err != nil {
			return err
		}

		applier := migrate.NewApplier(db.DB)
		statuses, err := applier.Status(cmd.Context(), schema.Steps())
		if err != nil {
			return err
		}

		for _, s := range statuses {
			marker := "·"
			if s.Applied {
				marker = "✓"
			}
			fmt.Printf("  %s %03d %s\n", marker, s.Step.ID, s.Step.Description)
		}
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}
