package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskr-api/internal/api/shared"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
	"github.com/phrazzld/taskr-api/internal/service"
	"github.com/phrazzld/taskr-api/internal/store"
)

// TaskHandler handles task-related HTTP requests. Every route is scoped to
// the authenticated caller.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, log *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks cannot be nil for TaskHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: log.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task created",
		slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, parseTaskListOptions(r.URL.Query()))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id", store.ErrTaskNotFound)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Update handles PATCH /tasks/{id}. A body naming any key other than
// description or completed is rejected and nothing is applied.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id", store.ErrTaskNotFound)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var patch domain.TaskPatch
	if err := decodePatch(r, domain.TaskUpdateFields, &patch); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, taskID, patch)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _, ok := authFromRequest(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id", store.ErrTaskNotFound)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.tasks.Delete(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
