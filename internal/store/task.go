package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// TaskSummary is the joined read view of one task used by listings:
// the submission's identity plus the record's current status.
type TaskSummary struct {
	ID        uuid.UUID         `json:"id"`
	TaskType  string            `json:"task_type"`
	Status    domain.TaskStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// TaskStore defines the persistence contract the executor and the submission
// gateway rely on. Implementations must make every call atomic: a status
// update either fully commits or leaves the record untouched.
type TaskStore interface {
	// CreateTaskPair atomically persists a submission together with its
	// pending record. After this call the task is visible to readers and
	// addressable by the executor.
	// Returns validation errors from the domain entities if data is invalid.
	CreateTaskPair(ctx context.Context, submission *domain.TaskSubmission) error

	// GetSubmission retrieves the immutable input of a task.
	// Returns ErrTaskNotFound if no submission exists for the ID.
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.TaskSubmission, error)

	// GetRecord retrieves the mutable status record of a task.
	// Returns ErrTaskNotFound if no record exists for the ID.
	GetRecord(ctx context.Context, taskID uuid.UUID) (*domain.TaskRecord, error)

	// UpdateRecordStatus advances a record to the given status in a single
	// atomic statement, stamping updated_at and, for terminal statuses,
	// completed_at. Records already in a terminal state are left untouched
	// and the call reports ErrUpdateFailed, preserving exactly-once terminal
	// resolution. Returns ErrTaskNotFound if no record exists for the ID.
	UpdateRecordStatus(ctx context.Context, taskID uuid.UUID, status domain.TaskStatus, result string) error

	// ListTasks returns summaries of all tasks, newest first.
	ListTasks(ctx context.Context) ([]TaskSummary, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
