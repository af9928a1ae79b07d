package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskr-api/internal/avatar"
	"github.com/phrazzld/taskr-api/internal/config"
	"github.com/phrazzld/taskr-api/internal/job"
	"github.com/phrazzld/taskr-api/internal/notify"
	"github.com/phrazzld/taskr-api/internal/platform/postgres"
	"github.com/phrazzld/taskr-api/internal/redact"
	"github.com/phrazzld/taskr-api/internal/service"
	"github.com/phrazzld/taskr-api/internal/service/auth"
	"github.com/phrazzld/taskr-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userService service.UserService
	taskService service.TaskService

	// Mail jobs
	runner *job.Runner
}

// storage is the persistence layer the services are built on.
type storage struct {
	users      store.UserStore
	tasks      store.TaskStore
	transactor store.Transactor
}

// newApplication creates a new application backed by db.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app, err := assembleApplication(cfg, logger, storage{
		users:      postgres.NewPostgresUserStore(db, logger),
		tasks:      postgres.NewPostgresTaskStore(db, logger),
		transactor: store.NewDBTransactor(db),
	})
	if err != nil {
		return nil, err
	}
	app.db = db
	return app, nil
}

// assembleApplication wires services, the mail pipeline and the job runner
// on top of the given storage. The runner is started before returning.
func assembleApplication(cfg *config.Config, logger *slog.Logger, st storage) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.runner = job.NewRunner(job.RunnerConfig{
		WorkerCount: cfg.Mail.WorkerCount,
		QueueSize:   cfg.Mail.QueueSize,
		JobTimeout:  time.Duration(cfg.Mail.SendTimeoutSeconds) * time.Second,
	}, logger)
	app.runner.SetErrorHandler(func(j job.Job, err error) {
		logger.Warn("mail job failed",
			slog.String("job_id", j.ID().String()),
			slog.String("job_type", j.Type()),
			slog.String("error", redact.Error(err)))
	})

	notifier := notify.NewNotifier(notify.NewMailer(cfg.Mail, logger), app.runner, logger)

	app.userService, err = service.NewUserService(service.UserServiceDeps{
		Users:      st.users,
		Tasks:      st.tasks,
		Transactor: st.transactor,
		Tokens:     tokens,
		Hasher:     auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Notifier:   notifier,
		Avatars:    avatar.NewProcessor(),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(st.tasks, st.transactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.runner.Start()
	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns when ctx is canceled or the server fails.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains pending mail and closes the database.
func (app *application) cleanup(ctx context.Context) {
	if app.runner != nil {
		if err := app.runner.Stop(ctx); err != nil {
			app.logger.Warn("mail runner did not drain before shutdown",
				slog.String("error", err.Error()))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection",
				slog.String("error", redact.Error(err)))
		}
	}

	app.logger.Info("application shutdown completed")
}
