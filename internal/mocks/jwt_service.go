package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing. Without overrides
// it issues opaque tokens and validates only the tokens it issued.
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	mu     sync.Mutex
	issued map[string]uuid.UUID
	seq    int
}

// NewMockJWTService creates a mock with an empty token registry.
func NewMockJWTService() *MockJWTService {
	return &MockJWTService{issued: make(map[string]uuid.UUID)}
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.issued == nil {
		m.issued = make(map[string]uuid.UUID)
	}
	m.seq++
	token := fmt.Sprintf("mock-token-%d-%s", m.seq, userID)
	m.issued[token] = userID
	return token, nil
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.issued[tokenString]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{
		UserID:   userID,
		Subject:  userID.String(),
		IssuedAt: time.Now().UTC(),
		ID:       tokenString,
	}, nil
}
