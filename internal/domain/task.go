package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the execution state of a task record.
type TaskStatus string

// Possible task status values. Transitions are monotonic along
// pending -> processing -> {completed, failed}; completed and failed are
// terminal and never left.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Common validation errors for TaskSubmission and TaskRecord
var (
	ErrEmptyTaskID            = errors.New("task ID cannot be empty")
	ErrEmptyTaskInput         = errors.New("task input text cannot be empty")
	ErrEmptyTaskType          = errors.New("task type cannot be empty")
	ErrInvalidTaskStatus      = errors.New("invalid task status")
	ErrInvalidTaskTransition  = errors.New("invalid task status transition")
	ErrResultBeforeTerminal   = errors.New("task result cannot be set before a terminal status")
)

// TaskSubmission is the immutable input of one unit of submitted work.
// It is created once at submission time and never mutated afterwards;
// the executor only ever holds its ID while processing.
type TaskSubmission struct {
	ID        uuid.UUID `json:"id"`
	InputText string    `json:"input_text"`
	TaskType  string    `json:"task_type"`
	AccountID uuid.UUID `json:"account_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskSubmission creates a validated TaskSubmission with a fresh ID.
// accountID may be uuid.Nil for submissions not tied to an account.
func NewTaskSubmission(accountID uuid.UUID, taskType, inputText string) (*TaskSubmission, error) {
	submission := &TaskSubmission{
		ID:        uuid.New(),
		InputText: inputText,
		TaskType:  taskType,
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
	}

	if err := submission.Validate(); err != nil {
		return nil, err
	}

	return submission, nil
}

// Validate checks if the TaskSubmission has valid data.
func (s *TaskSubmission) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if s.InputText == "" {
		return ErrEmptyTaskInput
	}

	if s.TaskType == "" {
		return ErrEmptyTaskType
	}

	return nil
}

// TaskRecord is the mutable execution state of exactly one TaskSubmission,
// keyed by the submission's ID. Result stays empty until the record reaches
// a terminal status, after which it always carries either the processor's
// output or a human-readable error description.
type TaskRecord struct {
	TaskID      uuid.UUID  `json:"task_id"`
	Status      TaskStatus `json:"status"`
	Result      string     `json:"result,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTaskRecord creates the pending record for a submission.
func NewTaskRecord(taskID uuid.UUID) (*TaskRecord, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}

	now := time.Now().UTC()
	return &TaskRecord{
		TaskID:    taskID,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsTerminal reports whether the record has reached completed or failed.
func (r *TaskRecord) IsTerminal() bool {
	return r.Status == TaskStatusCompleted || r.Status == TaskStatusFailed
}

// CanTransitionTo reports whether moving to the given status preserves the
// monotonic pending -> processing -> {completed, failed} order.
func (r *TaskRecord) CanTransitionTo(next TaskStatus) bool {
	if !IsValidTaskStatus(next) {
		return false
	}

	switch r.Status {
	case TaskStatusPending:
		return next == TaskStatusProcessing || next == TaskStatusCompleted || next == TaskStatusFailed
	case TaskStatusProcessing:
		return next == TaskStatusCompleted || next == TaskStatusFailed
	default:
		// Terminal states are never left.
		return false
	}
}

// Transition advances the record to the given status, setting the result
// and timestamps. Result must be empty for non-terminal statuses.
func (r *TaskRecord) Transition(next TaskStatus, result string) error {
	if !r.CanTransitionTo(next) {
		return ErrInvalidTaskTransition
	}

	if result != "" && next != TaskStatusCompleted && next != TaskStatusFailed {
		return ErrResultBeforeTerminal
	}

	now := time.Now().UTC()
	r.Status = next
	r.Result = result
	r.UpdatedAt = now
	if next == TaskStatusCompleted || next == TaskStatusFailed {
		r.CompletedAt = &now
	}

	return nil
}

// IsValidTaskStatus checks if the given status is a known TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}
