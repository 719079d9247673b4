package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// Common request/response structures

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// AccountID is the unique identifier for the authenticated account
	AccountID uuid.UUID `json:"account_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`
}

// SubmitTaskRequest defines the payload for the task submission endpoint.
type SubmitTaskRequest struct {
	TaskType  string `json:"task_type"  validate:"required,min=1,max=128"`
	InputText string `json:"input_text" validate:"required"`
}

// SubmitTaskResponse defines the successful response for the task
// submission endpoint.
type SubmitTaskResponse struct {
	TaskID  uuid.UUID `json:"task_id"`
	Message string    `json:"message"`
}

// TaskDetailResponse is the full JSON view of one task.
type TaskDetailResponse struct {
	ID          uuid.UUID  `json:"id"`
	TaskType    string     `json:"task_type"`
	InputText   string     `json:"input_text"`
	Status      string     `json:"status"`
	Result      string     `json:"result"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TaskListResponse wraps the task listing.
type TaskListResponse struct {
	Tasks []store.TaskSummary `json:"tasks"`
}

// TaskTypesResponse lists the registered task types.
type TaskTypesResponse struct {
	TaskTypes []string `json:"task_types"`
}

// taskDetailToResponse converts a service.TaskDetail to its JSON view.
func taskDetailToResponse(detail *service.TaskDetail) TaskDetailResponse {
	return TaskDetailResponse{
		ID:          detail.ID,
		TaskType:    detail.TaskType,
		InputText:   detail.InputText,
		Status:      string(detail.Status),
		Result:      detail.Result,
		CreatedAt:   detail.CreatedAt,
		UpdatedAt:   detail.UpdatedAt,
		CompletedAt: detail.CompletedAt,
	}
}
