package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/taskr-api/internal/api/shared"
	"github.com/phrazzld/taskr-api/internal/avatar"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
	"github.com/phrazzld/taskr-api/internal/service"
)

// AvatarFormField is the multipart field carrying the upload.
const AvatarFormField = "avatar"

// multipartOverhead is headroom for boundaries and part headers on top of
// the file size limit.
const multipartOverhead = 64 << 10

// AvatarHandler handles avatar upload, removal and download.
type AvatarHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewAvatarHandler creates a new AvatarHandler
func NewAvatarHandler(users service.UserService, log *slog.Logger) *AvatarHandler {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for AvatarHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AvatarHandler{
		users:  users,
		logger: log.With(slog.String("component", "avatar_handler")),
	}
}

// Upload handles POST /users/me/avatar.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if r.ContentLength > avatar.MaxUploadBytes+multipartOverhead {
		HandleAPIError(w, r, &avatar.MediaError{Reason: avatar.ReasonTooLarge})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, avatar.MaxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile(AvatarFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, &avatar.MediaError{Reason: avatar.ReasonTooLarge})
			return
		}
		log.Debug("avatar form field missing", slog.String("error", err.Error()))
		HandleAPIError(w, r, &avatar.MediaError{Reason: avatar.ReasonUnreadable})
		return
	}
	defer func() { _ = file.Close() }()

	// Cheap rejection before reading the body.
	if err := avatar.CheckFilename(header.Filename); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, avatar.MaxUploadBytes+1))
	if err != nil {
		HandleAPIError(w, r, &avatar.MediaError{Reason: avatar.ReasonUnreadable})
		return
	}

	if err := h.users.SetAvatar(r.Context(), user.ID, header.Filename, data); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("avatar stored", slog.String("user_id", user.ID.String()))
	shared.RespondEmpty(w, http.StatusOK)
}

// Delete handles DELETE /users/me/avatar.
func (h *AvatarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.users.ClearAvatar(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondEmpty(w, http.StatusOK)
}

// Get handles GET /users/{id}/avatar. It is public.
func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id", service.ErrAvatarNotFound)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	data, err := h.users.GetAvatar(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to write avatar",
			slog.String("error", err.Error()))
	}
}
