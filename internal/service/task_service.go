package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
	"github.com/phrazzld/taskr-api/internal/redact"
	"github.com/phrazzld/taskr-api/internal/store"
)

// TaskService provides owner-scoped task operations. A task owned by another
// user is reported exactly like a missing one (store.ErrTaskNotFound).
type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, opts store.TaskListOptions) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
}

type taskServiceImpl struct {
	tasks      store.TaskStore
	transactor store.Transactor
	logger     *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// It returns an error if any required dependency is nil.
func NewTaskService(tasks store.TaskStore, transactor store.Transactor, log *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil")
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &taskServiceImpl{
		tasks:      tasks,
		transactor: transactor,
		logger:     log.With(slog.String("component", "task_service")),
	}, nil
}

// Create implements TaskService.Create
func (s *taskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		log.Debug("task rejected", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, s.wrap(ctx, "create_task", ownerID, err)
	}
	return task, nil
}

// List implements TaskService.List
func (s *taskServiceImpl) List(
	ctx context.Context,
	ownerID uuid.UUID,
	opts store.TaskListOptions,
) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID, opts)
	if err != nil {
		return nil, s.wrap(ctx, "list_tasks", ownerID, err)
	}
	return tasks, nil
}

// Get implements TaskService.Get
func (s *taskServiceImpl) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByOwner(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.wrap(ctx, "get_task", ownerID, err)
	}
	return task, nil
}

// Update implements TaskService.Update
func (s *taskServiceImpl) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	var updated *domain.Task
	err := s.transactor.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetByOwner(ctx, ownerID, taskID)
		if err != nil {
			return err
		}
		if err := patch.Apply(task); err != nil {
			return err
		}
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, s.wrap(ctx, "update_task", ownerID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return updated, nil
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.DeleteByOwner(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.wrap(ctx, "delete_task", ownerID, err)
	}
	return task, nil
}

// wrap passes through errors callers act on and wraps everything else.
func (s *taskServiceImpl) wrap(ctx context.Context, op string, ownerID uuid.UUID, err error) error {
	if errors.Is(err, domain.ErrValidation) || store.IsNotFoundError(err) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("task operation failed",
		slog.String("operation", op),
		slog.String("error", redact.Error(err)),
		slog.String("user_id", ownerID.String()))
	return NewServiceError(op, "task store failure", err)
}
