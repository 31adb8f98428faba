package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darwinsql/darwinctl/internal/cleanup"
	"github.com/darwinsql/darwinctl/internal/db"
)

var (
	flagCleanupExecute  bool
	flagCleanupTarget   string
	flagCleanupPatterns []string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned test data from a test database",
	Long: `Remove test data left behind by failed or interrupted test runs.

The tool only ever connects to an allow-listed test database, verifies the
store's own identity before touching anything, and deletes nothing unless
--execute is given. The default run reports what WOULD be deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, ok := cleanup.TargetByName(flagCleanupTarget)
		if !ok {
			return fmt.Errorf("unknown cleanup target %q (want %q or %q)",
				flagCleanupTarget, cleanup.Darwin2.Database(), cleanup.DarwinDev.Database())
		}

		// The connection always names the target database directly, the
		// same database the identity gate then re-verifies live.
		if err := openStore(target.Database()); err != nil {
			return err
		}

		tool := cleanup.New(db.DB, target).WithLogger(newLogger())
		report, err := tool.Run(cmd.Context(), cleanup.Options{
			Patterns: flagCleanupPatterns,
			Execute:  flagCleanupExecute,
		})
		if err != nil {
			return err
		}

		fmt.Print(renderCleanupReport(report))
		return nil
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&flagCleanupExecute, "execute", false,
		"actually delete data (default: dry-run showing what WOULD be deleted)")
	cleanupCmd.Flags().StringVar(&flagCleanupTarget, "target", cleanup.Darwin2.Database(),
		"test database to clean (darwin2 or darwin_dev)")
	cleanupCmd.Flags().StringSliceVar(&flagCleanupPatterns, "pattern", nil,
		"LIKE patterns for test creator keys (default: cognito-test-%, pytest-%)")
}
