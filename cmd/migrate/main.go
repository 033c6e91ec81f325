// Command migrate applies schema migrations and seeds the standards library
// from a pg_dump backup.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/infrastructure/config"
	"github.com/auditready/auditready-backend/internal/infrastructure/database"
	"github.com/auditready/auditready-backend/internal/infrastructure/telemetry"
	"github.com/auditready/auditready-backend/internal/service/library"
)

func main() {
	var (
		action     = flag.String("action", "up", "up, down, version or seed")
		steps      = flag.Int("steps", 0, "number of migrations to run (0 = all)")
		source     = flag.String("source", "file://migrations", "migration source URL")
		backupPath = flag.String("backup", "", "library backup file (for seed action)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *action, *steps, *source, *backupPath); err != nil {
		logger.Fatal("migration failed", zap.String("action", *action), zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, action string, steps int, source, backupPath string) error {
	switch action {
	case "up", "down", "version":
		return runMigrations(cfg, logger, action, steps, source)
	case "seed":
		return seedLibrary(cfg, logger, backupPath)
	default:
		return fmt.Errorf("unknown action: %s", action)
	}
}

func runMigrations(cfg *config.Config, logger *zap.Logger, action string, steps int, source string) error {
	m, err := migrate.New(source, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open migrator: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			return verr
		}
		logger.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already up to date")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("migrations applied", zap.String("action", action))
	return nil
}

// seedLibrary restores standards and requirements from a plain-text pg_dump
// backup. The import is idempotent, so re-running against a seeded database
// is harmless.
func seedLibrary(cfg *config.Config, logger *zap.Logger, backupPath string) error {
	if backupPath == "" {
		return fmt.Errorf("seed requires -backup pointing at a pg_dump backup file")
	}

	backup, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer backup.Close()

	ctx := context.Background()
	pool, err := database.NewPool(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := library.NewService(logger,
		database.NewStandardRepository(pool),
		database.NewRequirementRepository(pool))

	report, err := svc.ImportBackup(ctx, backup)
	if err != nil {
		return err
	}

	logger.Info("library seeded",
		zap.Int("standards_found", report.StandardsFound),
		zap.Int("standards_created", report.StandardsCreated),
		zap.Int("requirements_found", report.RequirementsFound),
		zap.Int("requirements_created", report.RequirementsCreated),
		zap.Int("skipped", report.Skipped),
		zap.Int("orphaned", report.Orphaned),
	)
	return nil
}
