package mocks

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, user *domain.User) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn  func(ctx context.Context, email string) (*domain.User, error)
	ListFn        func(ctx context.Context) ([]*domain.User, error)
	UpdateFn      func(ctx context.Context, user *domain.User) error
	DeleteFn      func(ctx context.Context, id uuid.UUID) error
	AddTokenFn    func(ctx context.Context, userID uuid.UUID, token string) error
	RemoveTokenFn func(ctx context.Context, userID uuid.UUID, token string) error
	ClearTokensFn func(ctx context.Context, userID uuid.UUID) error
	SetAvatarFn   func(ctx context.Context, userID uuid.UUID, avatar []byte) error
	GetAvatarFn   func(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// WithTxCalls counts how often a transactional copy was requested.
	WithTxCalls int

	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	order   []uuid.UUID
	avatars map[uuid.UUID][]byte
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:   make(map[uuid.UUID]*domain.User),
		avatars: make(map[uuid.UUID][]byte),
	}
}

var _ store.UserStore = (*MockUserStore)(nil)

// Seed stores a copy of user, bypassing validation.
func (m *MockUserStore) Seed(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		m.order = append(m.order, user.ID)
	}
	m.users[user.ID] = cloneUser(user)
}

// Count returns the number of stored users.
func (m *MockUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if user.HashedPassword == "" {
		return store.ErrInvalidEntity
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTakenLocked(user.Email, uuid.Nil) {
		return store.ErrEmailExists
	}
	m.users[user.ID] = cloneUser(user)
	m.order = append(m.order, user.ID)
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return cloneUser(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements the UserStore interface
func (m *MockUserStore) List(ctx context.Context) ([]*domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*domain.User, 0, len(m.order))
	for _, id := range m.order {
		users = append(users, cloneUser(m.users[id]))
	}
	return users, nil
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if m.emailTakenLocked(user.Email, user.ID) {
		return store.ErrEmailExists
	}
	updated := cloneUser(user)
	// Tokens are managed through the token methods only.
	updated.Tokens = existing.Tokens
	m.users[user.ID] = updated
	return nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.avatars, id)
	m.order = slices.DeleteFunc(m.order, func(existing uuid.UUID) bool { return existing == id })
	return nil
}

// AddToken implements the UserStore interface
func (m *MockUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.AddTokenFn != nil {
		return m.AddTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.Tokens = append(user.Tokens, token)
	return nil
}

// RemoveToken implements the UserStore interface
func (m *MockUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.RemoveTokenFn != nil {
		return m.RemoveTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	if i := slices.Index(user.Tokens, token); i >= 0 {
		user.Tokens = slices.Delete(user.Tokens, i, i+1)
	}
	return nil
}

// ClearTokens implements the UserStore interface
func (m *MockUserStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	if m.ClearTokensFn != nil {
		return m.ClearTokensFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.Tokens = nil
	return nil
}

// SetAvatar implements the UserStore interface
func (m *MockUserStore) SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error {
	if m.SetAvatarFn != nil {
		return m.SetAvatarFn(ctx, userID, avatar)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	if avatar == nil {
		delete(m.avatars, userID)
		return nil
	}
	m.avatars[userID] = slices.Clone(avatar)
	return nil
}

// GetAvatar implements the UserStore interface
func (m *MockUserStore) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	if m.GetAvatarFn != nil {
		return m.GetAvatarFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return nil, store.ErrUserNotFound
	}
	return slices.Clone(m.avatars[userID]), nil
}

// WithTx implements the UserStore interface. The mock has no transactions
// and returns itself.
func (m *MockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	m.mu.Lock()
	m.WithTxCalls++
	m.mu.Unlock()
	return m
}

func (m *MockUserStore) emailTakenLocked(email string, except uuid.UUID) bool {
	for id, user := range m.users {
		if id != except && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	return &c
}
