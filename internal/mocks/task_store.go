package mocks

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	CreateFn           func(ctx context.Context, task *domain.Task) error
	GetByOwnerFn       func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	ListByOwnerFn      func(ctx context.Context, ownerID uuid.UUID, opts store.TaskListOptions) ([]*domain.Task, error)
	UpdateFn           func(ctx context.Context, task *domain.Task) error
	DeleteByOwnerFn    func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	DeleteAllByOwnerFn func(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// LastListOptions records the options of the most recent listing.
	LastListOptions store.TaskListOptions

	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Seed stores a copy of task, bypassing validation.
func (m *MockTaskStore) Seed(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *task
	m.tasks[task.ID] = &c
}

// CountByOwner returns the number of tasks owned by ownerID.
func (m *MockTaskStore) CountByOwner(ownerID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if t.UserID == ownerID {
			n++
		}
	}
	return n
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	c := *task
	m.tasks[task.ID] = &c
	return nil
}

// GetByOwner implements the TaskStore interface
func (m *MockTaskStore) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.GetByOwnerFn != nil {
		return m.GetByOwnerFn(ctx, ownerID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	c := *task
	return &c, nil
}

// ListByOwner implements the TaskStore interface. It applies the filter,
// ordering and paging the Postgres store applies.
func (m *MockTaskStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	opts store.TaskListOptions,
) ([]*domain.Task, error) {
	m.mu.Lock()
	m.LastListOptions = opts
	m.mu.Unlock()

	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID, opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Task, 0)
	for _, task := range m.tasks {
		if task.UserID != ownerID {
			continue
		}
		if opts.Completed != nil && task.Completed != *opts.Completed {
			continue
		}
		c := *task
		result = append(result, &c)
	}

	slices.SortFunc(result, func(a, b *domain.Task) int {
		c := compareTasks(a, b, opts.SortField)
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if opts.SortDesc {
			return -c
		}
		return c
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return []*domain.Task{}, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func compareTasks(a, b *domain.Task, field store.TaskSortField) int {
	switch field {
	case store.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case store.SortByDescription:
		return cmp.Compare(a.Description, b.Description)
	case store.SortByCompleted:
		switch {
		case a.Completed == b.Completed:
			return 0
		case a.Completed:
			return 1
		default:
			return -1
		}
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	c := *task
	m.tasks[task.ID] = &c
	return nil
}

// DeleteByOwner implements the TaskStore interface
func (m *MockTaskStore) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.DeleteByOwnerFn != nil {
		return m.DeleteByOwnerFn(ctx, ownerID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return task, nil
}

// DeleteAllByOwner implements the TaskStore interface
func (m *MockTaskStore) DeleteAllByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if m.DeleteAllByOwnerFn != nil {
		return m.DeleteAllByOwnerFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, task := range m.tasks {
		if task.UserID == ownerID {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

// WithTx implements the TaskStore interface and returns the mock itself.
func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}
