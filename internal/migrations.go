package internal

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukerupert/addressvalidation/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded migrations that create the Postgres
// cache table. A nil logger falls back to slog.Default().
func RunMigrations(db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetBaseFS(migrations.MigrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	logger.Info("database migrations applied", "version", version)

	return nil
}
