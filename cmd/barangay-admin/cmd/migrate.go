package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"barangay-events/internal/database"
	"barangay-events/internal/database/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the versioned Postgres schema",
	Long: `Apply or roll back the embedded Postgres migrations.

SQLite databases are created directly by the service and the seed command
and have no migration history.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newMigrationRunner(cmd)
		if err != nil {
			return err
		}
		defer runner.Close()
		return runner.Up()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration, dropping the events table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newMigrationRunner(cmd)
		if err != nil {
			return err
		}
		defer runner.Close()
		return runner.Down()
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newMigrationRunner(cmd)
		if err != nil {
			return err
		}
		defer runner.Close()

		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func newMigrationRunner(cmd *cobra.Command) (*migrations.Runner, error) {
	cfg := loadConfig()
	if !database.IsPostgres(cfg.Database) {
		return nil, errors.New("migrations are only used with DATABASE_DRIVER=postgres")
	}
	return migrations.NewRunner(cfg.Database.URL, newLogger(cmd))
}
