package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/domain"
)

// TaskSortField names a column tasks can be ordered by.
type TaskSortField string

// Supported sort fields.
const (
	SortByCreatedAt   TaskSortField = "created_at"
	SortByUpdatedAt   TaskSortField = "updated_at"
	SortByDescription TaskSortField = "description"
	SortByCompleted   TaskSortField = "completed"
)

// TaskListOptions filters, orders and pages a task listing.
// The zero value lists every task of the owner in creation order.
type TaskListOptions struct {
	// Completed filters by completion state when non-nil.
	Completed *bool
	// SortField defaults to SortByCreatedAt when empty.
	SortField TaskSortField
	SortDesc  bool
	// Limit of zero means no limit.
	Limit  int
	Offset int
}

// TaskStore defines the interface for task persistence. Every read and
// write is scoped by owner; a task owned by someone else behaves exactly
// like a task that does not exist.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByOwner retrieves the task with id owned by ownerID.
	// Returns ErrTaskNotFound if there is no such task for that owner.
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// ListByOwner returns the owner's tasks according to opts.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, opts TaskListOptions) ([]*domain.Task, error)

	// Update persists description and completed of a task owned by task.UserID.
	// Returns ErrTaskNotFound if there is no such task for that owner.
	Update(ctx context.Context, task *domain.Task) error

	// DeleteByOwner removes the task and returns it as it was before removal.
	// Returns ErrTaskNotFound if there is no such task for that owner.
	DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// DeleteAllByOwner removes every task of the owner and reports how many were removed.
	DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
