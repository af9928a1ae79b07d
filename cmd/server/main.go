// Package main implements the entry point for the Taskr API server, which
// serves user accounts, sessions, avatars and personal task lists.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql
	"github.com/phrazzld/taskr-api/internal/config"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
	"github.com/phrazzld/taskr-api/internal/platform/postgres"
	"github.com/phrazzld/taskr-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"Run a database migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("taskr-api: %v", err)
	}
}

func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("sendgrid_configured", cfg.Mail.SendGridAPIKey != ""))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDatabase(db, l)
		return postgres.Migrate(ctx, db, migrateCmd, l)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, "up", l); err != nil {
			closeDatabase(db, l)
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		closeDatabase(db, l)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// openDatabase opens the pool and waits briefly for the server to answer.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, l *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeDatabase(db, l)
		return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	l.Info("database connection established")
	return db, nil
}

func closeDatabase(db *sql.DB, l *slog.Logger) {
	if err := db.Close(); err != nil {
		l.Error("error closing database connection", slog.String("error", redact.Error(err)))
	}
}
