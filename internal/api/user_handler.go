package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskr-api/internal/api/shared"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/service"
)

// UserHandler handles account and session requests.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, log *slog.Logger) *UserHandler {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for UserHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: log.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	user, token, err := h.users.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{User: user.Public(), Token: token})
}

// Login handles POST /users/login. Every failure, including a malformed
// body, gets the same response.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, service.ErrInvalidCredentials)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, service.ErrInvalidCredentials)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: user.Public(), Token: token})
}

// Logout handles POST /users/logout and revokes the token used for the call.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, token, ok := authFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.users.RevokeToken(r.Context(), user.ID, token); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpectedFailure, err)
		return
	}
	shared.RespondEmpty(w, http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.users.RevokeAllTokens(r.Context(), user.ID); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpectedFailure, err)
		return
	}
	shared.RespondEmpty(w, http.StatusOK)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, usersToPublic(users))
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user.Public())
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}

	var patch domain.UserPatch
	if err := decodePatch(r, domain.UserUpdateFields, &patch); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, patch)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, updated.Public())
}

// DeleteMe handles DELETE /users/me. Any failure is a 500.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}

	deleted, err := h.users.DeleteAccount(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpectedFailure, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deleted.Public())
}

// authFromRequest reads the caller set by the auth middleware and writes a
// 401 when it is missing.
func authFromRequest(w http.ResponseWriter, r *http.Request) (*domain.User, string, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok || user == nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgPleaseAuth)
		return nil, "", false
	}
	token, _ := shared.TokenFromContext(r.Context())
	return user, token, true
}
