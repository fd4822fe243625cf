package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/taskfolio/taskfolio-api/migrations"
)

// runMigrations applies any pending database migrations from the embedded
// migration files. Safe to call on every startup: goose tracks applied
// versions in its own table.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	// Correlation ID lets all logs for one migration run be traced together
	correlationID := uuid.New().String()
	migrationLogger := logger.With(
		slog.String("correlation_id", correlationID),
		slog.String("component", "migrations"),
	)

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	startTime := time.Now()
	migrationLogger.Info("Applying database migrations")

	if err := goose.Up(db, "."); err != nil {
		migrationLogger.Error("Migration failed",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds())
		return fmt.Errorf("goose up: %w", err)
	}

	migrationLogger.Info("Database migrations applied",
		"duration_ms", time.Since(startTime).Milliseconds())
	return nil
}

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}
