package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
	"github.com/taskdeck/taskdeck-api/internal/task"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TaskDetail is the full read view of one task: the immutable submission
// joined with its mutable record.
type TaskDetail struct {
	ID          uuid.UUID         `json:"id"`
	TaskType    string            `json:"task_type"`
	InputText   string            `json:"input_text"`
	Status      domain.TaskStatus `json:"status"`
	Result      string            `json:"result"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at"`
}

// TaskDispatcher hands accepted tasks to the background execution pool.
type TaskDispatcher interface {
	// Dispatch enqueues a task for asynchronous execution without blocking.
	Dispatch(taskID uuid.UUID, inputPayload, taskType string) error
}

// TypeChecker answers whether a task type currently has a registered
// processor. Satisfied by task.Registry.
type TypeChecker interface {
	Has(taskType string) bool
	Types() []string
}

// TaskService provides task submission and status reading operations.
type TaskService interface {
	// Submit validates the task type, persists the submission with its
	// pending record and hands the task to the dispatcher. The returned
	// submission carries the generated task ID.
	Submit(ctx context.Context, accountID uuid.UUID, taskType, inputText string) (*domain.TaskSubmission, error)

	// GetTask retrieves the full detail of one task.
	GetTask(ctx context.Context, taskID uuid.UUID) (*TaskDetail, error)

	// ListTasks returns summaries of all tasks, newest first.
	ListTasks(ctx context.Context) ([]store.TaskSummary, error)

	// GetResult returns the raw result text of a task. Tasks that exist but
	// have not produced a result yet yield an empty string.
	GetResult(ctx context.Context, taskID uuid.UUID) (string, error)

	// TaskTypes lists the currently registered task types, sorted.
	TaskTypes() []string
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskStore  store.TaskStore
	registry   TypeChecker
	dispatcher TaskDispatcher
	logger     *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	registry TypeChecker,
	dispatcher TaskDispatcher,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("taskStore cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore:  taskStore,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "task_service")),
	}, nil
}

// Submit implements TaskService.Submit.
func (s *taskServiceImpl) Submit(
	ctx context.Context,
	accountID uuid.UUID,
	taskType, inputText string,
) (*domain.TaskSubmission, error) {
	if !s.registry.Has(taskType) {
		return nil, NewTaskServiceError("submit",
			fmt.Sprintf("task type '%s' not found", taskType), ErrUnknownTaskType)
	}

	submission, err := domain.NewTaskSubmission(accountID, taskType, inputText)
	if err != nil {
		return nil, NewTaskServiceError("submit", "invalid submission", err)
	}
	if err := s.taskStore.CreateTaskPair(ctx, submission); err != nil {
		return nil, NewTaskServiceError("submit", "failed to persist task", err)
	}

	s.logger.Info("task accepted",
		"task_id", submission.ID,
		"task_type", taskType)

	if err := s.dispatcher.Dispatch(submission.ID, inputText, taskType); err != nil {
		// The pair is already persisted. Resolve the record so the task is
		// not left pending forever with nothing scheduled to run it.
		s.failUnscheduled(ctx, submission.ID, err)
		return nil, NewTaskServiceError("submit", "failed to schedule task", err)
	}

	return submission, nil
}

// failUnscheduled force-fails a record whose task could not be handed to the
// dispatcher. Best effort: a task already picked up by an executor is in a
// later state and the guarded update will simply not apply.
func (s *taskServiceImpl) failUnscheduled(ctx context.Context, taskID uuid.UUID, cause error) {
	result := fmt.Sprintf("Task could not be scheduled: %v", cause)
	if err := s.taskStore.UpdateRecordStatus(ctx, taskID, domain.TaskStatusFailed, result); err != nil {
		s.logger.Error("failed to mark unscheduled task as failed",
			"task_id", taskID,
			"dispatch_error", cause,
			"error", err)
		return
	}
	s.logger.Warn("task could not be scheduled, marked failed",
		"task_id", taskID,
		"error", cause)
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*TaskDetail, error) {
	submission, err := s.taskStore.GetSubmission(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	record, err := s.taskStore.GetRecord(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task record %s: %w", taskID, err)
	}

	return &TaskDetail{
		ID:          submission.ID,
		TaskType:    submission.TaskType,
		InputText:   submission.InputText,
		Status:      record.Status,
		Result:      record.Result,
		CreatedAt:   submission.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
		CompletedAt: record.CompletedAt,
	}, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]store.TaskSummary, error) {
	summaries, err := s.taskStore.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return summaries, nil
}

// GetResult implements TaskService.GetResult.
func (s *taskServiceImpl) GetResult(ctx context.Context, taskID uuid.UUID) (string, error) {
	record, err := s.taskStore.GetRecord(ctx, taskID)
	if err != nil {
		return "", fmt.Errorf("failed to get task record %s: %w", taskID, err)
	}
	return record.Result, nil
}

// TaskTypes implements TaskService.TaskTypes.
func (s *taskServiceImpl) TaskTypes() []string {
	return s.registry.Types()
}

// Compile-time check that the registry satisfies the service's view of it.
var _ TypeChecker = (*task.Registry)(nil)
