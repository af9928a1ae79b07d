package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/taskr-api/internal/api/shared"
	"github.com/phrazzld/taskr-api/internal/avatar"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/service"
	"github.com/phrazzld/taskr-api/internal/service/auth"
	"github.com/phrazzld/taskr-api/internal/store"
)

// Client-facing messages.
const (
	MsgUnableToLogin     = "Unable to login"
	MsgPleaseAuth        = "Please authenticate"
	MsgInvalidUpdates    = "Invalid updates"
	MsgInvalidRequest    = "Invalid request format"
	MsgValidationFailed  = "Validation failed"
	MsgUnexpectedFailure = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return http.StatusUnauthorized

	// Bad request errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidUpdate),
		errors.Is(err, avatar.ErrUnsupportedMedia),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors, including resources owned by someone else
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpectedFailure
	}

	var mediaErr *avatar.MediaError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return MsgUnableToLogin

	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return MsgPleaseAuth

	case errors.Is(err, domain.ErrInvalidUpdate):
		return MsgInvalidUpdates

	case errors.As(err, &mediaErr):
		return mediaErr.Reason

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return MsgValidationFailed

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	default:
		return MsgUnexpectedFailure
	}
}

// HandleAPIError writes the response for err. Not-found errors get an empty
// 404, validation errors list their fields, and everything else gets the
// safe message for its status.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	if status == http.StatusNotFound {
		shared.RespondEmpty(w, status)
		return
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.HasErrors() {
		shared.RespondWithFieldErrors(w, r, verr.Fields, err)
		return
	}

	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
