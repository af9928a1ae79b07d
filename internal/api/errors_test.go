package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskr-api/internal/avatar"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/service"
	"github.com/phrazzld/taskr-api/internal/service/auth"
	"github.com/phrazzld/taskr-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad credentials", service.ErrInvalidCredentials, http.StatusBadRequest},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"validation", domain.NewValidationError("email", "is invalid"), http.StatusBadRequest},
		{"invalid update", domain.CheckUpdateKeys([]string{"foo"}, domain.TaskUpdateFields), http.StatusBadRequest},
		{"media", &avatar.MediaError{Reason: avatar.ReasonTooLarge}, http.StatusBadRequest},
		{"missing task", store.ErrTaskNotFound, http.StatusNotFound},
		{"wrapped missing", fmt.Errorf("get: %w", store.ErrUserNotFound), http.StatusNotFound},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"service failure", service.NewServiceError("x", "y", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MsgUnableToLogin, GetSafeErrorMessage(service.ErrInvalidCredentials))
	assert.Equal(t, MsgPleaseAuth, GetSafeErrorMessage(auth.ErrInvalidToken))
	assert.Equal(t, MsgInvalidUpdates,
		GetSafeErrorMessage(domain.CheckUpdateKeys([]string{"owner"}, domain.TaskUpdateFields)))
	assert.Equal(t, avatar.ReasonBadExtension,
		GetSafeErrorMessage(&avatar.MediaError{Reason: avatar.ReasonBadExtension}))
	assert.Equal(t, MsgUnexpectedFailure,
		GetSafeErrorMessage(errors.New("pq: password authentication failed for user admin")))
	assert.Equal(t, MsgUnexpectedFailure, GetSafeErrorMessage(nil))
}

func TestHandleAPIError_NotFoundHasEmptyBody(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/tasks/x", nil), store.ErrTaskNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandleAPIError_ServerErrorIsGeneric(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := service.NewServiceError("list_tasks", "task store failure", errors.New("dial tcp 10.0.0.3:5432"))
	HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil), err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgUnexpectedFailure)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}
