package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. The user must carry a HashedPassword; the
	// plaintext Password is never written.
	// Returns ErrEmailExists if the email is already taken (case-insensitive).
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID, including active tokens.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns every user ordered by creation time. Tokens are not loaded.
	List(ctx context.Context) ([]*domain.User, error)

	// Update persists name, email, age and HashedPassword of an existing user.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and their tokens.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken appends a session token to the user's active list.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveToken removes exactly one active token. Removing a token that is
	// not present is not an error.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// ClearTokens removes every active token of the user.
	ClearTokens(ctx context.Context, userID uuid.UUID) error

	// SetAvatar replaces the stored avatar. A nil avatar clears it.
	// Returns ErrUserNotFound if the user does not exist.
	SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error

	// GetAvatar returns the stored avatar bytes, or nil when none is set.
	// Returns ErrUserNotFound if the user does not exist.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) UserStore
}
