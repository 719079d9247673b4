package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/api/middleware"
	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// Submit handles POST /api/tasks requests. Execution happens asynchronously,
// so a successful submission answers 202 Accepted with the task ID.
func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r)
	if !ok || accountID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Account ID not found or invalid")
		return
	}

	var req SubmitTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	submission, err := h.taskService.Submit(r.Context(), accountID, req.TaskType, req.InputText)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTaskType) {
			shared.RespondWithError(w, r, http.StatusNotFound,
				fmt.Sprintf("Task type '%s' not found", req.TaskType))
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to submit task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitTaskResponse{
		TaskID:  submission.ID,
		Message: "Task submitted successfully",
	})
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromRequest(w, r)
	if !ok {
		return
	}

	detail, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to get task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskDetailToResponse(detail))
}

// ListTasks handles GET /api/tasks requests, newest first.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to list tasks", err)
		return
	}
	if summaries == nil {
		summaries = []store.TaskSummary{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: summaries})
}

// GetResult handles GET /api/tasks/{id}/result requests. The raw result is
// returned as plain text; a task that has not produced one yet yields an
// empty body.
func (h *TaskHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.taskService.GetResult(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to get task result", err)
		return
	}

	shared.RespondWithText(w, r, http.StatusOK, result)
}

// ListTaskTypes handles GET /api/task-types requests.
func (h *TaskHandler) ListTaskTypes(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, TaskTypesResponse{
		TaskTypes: h.taskService.TaskTypes(),
	})
}

// taskIDFromRequest parses the {id} path parameter, answering 400 itself
// when the value is not a UUID.
func (h *TaskHandler) taskIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	taskID, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return taskID, true
}
