package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"artmarket/internal/config"
	"artmarket/internal/database"
	"artmarket/internal/database/migration"
	"artmarket/internal/logger"
)

var migrateList bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Creates missing tables and indexes and seeds default settings.
Every step is recorded in schema_migrations, so running it twice is safe.

Examples:
  marketctl migrate          # apply pending steps
  marketctl migrate --list   # print the known steps without connecting`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateList, "list", false, "Print migration step names and exit")
}

// openDB is replaced in tests.
var openDB = func(ctx context.Context, c config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	return database.NewPostgres(ctx, c, log)
}

var newLogger = func(cfg *config.AppConfig) (*zap.Logger, error) {
	return logger.New(cfg.Environment, cfg.Location())
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if migrateList {
		for _, name := range migration.StepNames() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	cfg := config.Load()
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	db, err := openDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}
	fmt.Fprintln(out, "schema up to date")
	return nil
}
