package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mcptest/internal/config"
	"mcptest/internal/migration"
	"mcptest/internal/storage"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	config *config.Config
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config) *MigrateCommand {
	return &MigrateCommand{config: cfg}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch mc.config.Store {
	case config.StoreSQLite:
	case config.StoreMySQL:
		created, err := migration.NewDatabaseManager(mc.config).EnsureDatabase(ctx)
		if err != nil {
			return err
		}
		if created {
			color.New(color.FgGreen).Fprintln(out, "✓ Database created")
		}
	default:
		color.New(color.FgYellow).Fprintf(out, "The %s store has no schema to migrate\n", mc.config.Store)
		return nil
	}

	db, err := storage.OpenDB(mc.config)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping db: %w", err)
	}

	var migrator migration.Migrator = migration.NewSchemaMigrator(db)
	applied, err := migrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if applied == 0 {
		color.New(color.FgGreen).Fprintln(out, "✓ Schema is up to date")
		return nil
	}
	color.New(color.FgGreen).Fprintf(out, "✓ Applied %d migration(s)\n", applied)
	return nil
}
