package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// mockTaskService lets each test script the service behavior per method.
type mockTaskService struct {
	SubmitFn    func(ctx context.Context, accountID uuid.UUID, taskType, inputText string) (*domain.TaskSubmission, error)
	GetTaskFn   func(ctx context.Context, taskID uuid.UUID) (*service.TaskDetail, error)
	ListTasksFn func(ctx context.Context) ([]store.TaskSummary, error)
	GetResultFn func(ctx context.Context, taskID uuid.UUID) (string, error)
	TaskTypesFn func() []string
}

var _ service.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) Submit(
	ctx context.Context,
	accountID uuid.UUID,
	taskType, inputText string,
) (*domain.TaskSubmission, error) {
	return m.SubmitFn(ctx, accountID, taskType, inputText)
}

func (m *mockTaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*service.TaskDetail, error) {
	return m.GetTaskFn(ctx, taskID)
}

func (m *mockTaskService) ListTasks(ctx context.Context) ([]store.TaskSummary, error) {
	return m.ListTasksFn(ctx)
}

func (m *mockTaskService) GetResult(ctx context.Context, taskID uuid.UUID) (string, error) {
	return m.GetResultFn(ctx, taskID)
}

func (m *mockTaskService) TaskTypes() []string {
	if m.TaskTypesFn != nil {
		return m.TaskTypesFn()
	}
	return nil
}

// mockAuthService scripts the login outcome.
type mockAuthService struct {
	LoginFn func(ctx context.Context, username, password string) (string, uuid.UUID, error)
}

var _ service.AuthService = (*mockAuthService)(nil)

func (m *mockAuthService) Login(ctx context.Context, username, password string) (string, uuid.UUID, error) {
	return m.LoginFn(ctx, username, password)
}
