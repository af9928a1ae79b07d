package mocks

import (
	"strings"

	"github.com/phrazzld/taskr-api/internal/service/auth"
)

const mockHashPrefix = "mock-hash:"

// MockPasswordHasher implements auth.PasswordHasher with a reversible,
// instant hash so tests do not pay the bcrypt cost.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return mockHashPrefix + password, nil
}

// Compare implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if !strings.HasPrefix(hashedPassword, mockHashPrefix) ||
		strings.TrimPrefix(hashedPassword, mockHashPrefix) != password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
