package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillon/creditpulse/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required tables and
indexes for the application to function properly.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// initStorage migrates as part of opening the database.
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	slog.Info(cli.FormatSuccess("Database migrations completed"))
	return nil
}
