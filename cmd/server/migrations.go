package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/wordwell/wordwell-api/migrations"
)

// runMigrations applies all pending database migrations from the embedded
// migration files. It is safe to call on every startup; goose tracks the
// applied versions in the database.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	migrationLogger := logger.With("component", "migrations")

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	before, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read current migration version: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	after, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version after apply: %w", err)
	}

	if before == after {
		migrationLogger.Info("Database schema up to date", "version", after)
	} else {
		migrationLogger.Info("Database migrations applied",
			"from_version", before,
			"to_version", after)
	}
	return nil
}
