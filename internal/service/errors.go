package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskr-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for them; the API layer maps them to status codes.
var (
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password. The two cases are never distinguished to callers.
	ErrInvalidCredentials = errors.New("unable to login")

	// ErrUnauthenticated is returned when a bearer token cannot be resolved to
	// a user holding that exact token.
	ErrUnauthenticated = errors.New("please authenticate")

	// ErrAvatarNotFound is returned when a user has no avatar or does not exist.
	ErrAvatarNotFound = fmt.Errorf("%w: avatar", store.ErrNotFound)
)

// ServiceError wraps unexpected failures with the operation that produced them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
