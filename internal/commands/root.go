package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/darwinsql/darwinctl/internal/db"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "darwinctl",
	Short: "Schema and maintenance CLI for the Darwin task store",
	Long: `darwinctl operates the Darwin task-tracking database: it applies schema
migrations, seeds the development database, and cleans orphaned test data
under strict guardrails.`,
	SilenceUsage: true,
}

var (
	flagSQLitePath string
	flagDatabase   string
)

// newLogger builds the CLI logger. Level comes from DARWIN_LOG.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv("DARWIN_LOG"); v != "" {
		if l, err := zerolog.ParseLevel(v); err == nil {
			level = l
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

// openStore connects to the target store: a local sqlite file when --db is
// given, otherwise the env-configured MySQL endpoint. database, when not
// empty, overrides the database the env selects.
func openStore(database string) error {
	if flagSQLitePath != "" {
		_, err := db.Open(db.Config{SQLitePath: flagSQLitePath})
		return err
	}

	cfg, err := db.ConfigFromEnv()
	if err != nil {
		return err
	}
	if database != "" {
		cfg.Database = database
	}
	_, err = db.Open(cfg)
	return err
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command, cancelling on SIGINT/SIGTERM so an
// in-flight migration step can roll back before exit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer db.Close()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSQLitePath, "db", "", "path to a local sqlite store (overrides env endpoint)")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "database", "", "database name on the env-configured endpoint")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}
