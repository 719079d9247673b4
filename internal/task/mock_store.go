package task

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// MockTaskStore implements the store.TaskStore interface for testing.
// Default behavior is an in-memory store enforcing the same terminal-state
// guard as the real implementation; individual operations can be overridden
// through the *Fn fields to inject failures.
type MockTaskStore struct {
	mu          sync.RWMutex
	submissions map[uuid.UUID]*domain.TaskSubmission
	records     map[uuid.UUID]*domain.TaskRecord

	// statusHistory records every status a record passed through, in order,
	// so tests can assert transition sequences.
	statusHistory map[uuid.UUID][]domain.TaskStatus

	CreatePairFn   func(ctx context.Context, submission *domain.TaskSubmission) error
	GetSubmissionFn func(ctx context.Context, id uuid.UUID) (*domain.TaskSubmission, error)
	GetRecordFn    func(ctx context.Context, taskID uuid.UUID) (*domain.TaskRecord, error)
	UpdateStatusFn func(ctx context.Context, taskID uuid.UUID, status domain.TaskStatus, result string) error
}

// NewMockTaskStore creates a MockTaskStore with in-memory default behavior.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		submissions:   make(map[uuid.UUID]*domain.TaskSubmission),
		records:       make(map[uuid.UUID]*domain.TaskRecord),
		statusHistory: make(map[uuid.UUID][]domain.TaskStatus),
	}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// CreateTaskPair implements store.TaskStore.CreateTaskPair
func (s *MockTaskStore) CreateTaskPair(ctx context.Context, submission *domain.TaskSubmission) error {
	if s.CreatePairFn != nil {
		return s.CreatePairFn(ctx, submission)
	}

	record, err := domain.NewTaskRecord(submission.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[submission.ID] = submission
	s.records[submission.ID] = record
	s.statusHistory[submission.ID] = []domain.TaskStatus{record.Status}
	return nil
}

// GetSubmission implements store.TaskStore.GetSubmission
func (s *MockTaskStore) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.TaskSubmission, error) {
	if s.GetSubmissionFn != nil {
		return s.GetSubmissionFn(ctx, id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *submission
	return &copied, nil
}

// GetRecord implements store.TaskStore.GetRecord
func (s *MockTaskStore) GetRecord(ctx context.Context, taskID uuid.UUID) (*domain.TaskRecord, error) {
	if s.GetRecordFn != nil {
		return s.GetRecordFn(ctx, taskID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[taskID]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *record
	return &copied, nil
}

// UpdateRecordStatus implements store.TaskStore.UpdateRecordStatus
func (s *MockTaskStore) UpdateRecordStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status domain.TaskStatus,
	result string,
) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, taskID, status, result)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[taskID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if record.IsTerminal() {
		return fmt.Errorf("%w: record already %s", store.ErrUpdateFailed, record.Status)
	}
	if err := record.Transition(status, result); err != nil {
		return err
	}
	s.statusHistory[taskID] = append(s.statusHistory[taskID], status)
	return nil
}

// ListTasks implements store.TaskStore.ListTasks
func (s *MockTaskStore) ListTasks(ctx context.Context) ([]store.TaskSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]store.TaskSummary, 0, len(s.submissions))
	for id, submission := range s.submissions {
		summaries = append(summaries, store.TaskSummary{
			ID:        id,
			TaskType:  submission.TaskType,
			Status:    s.records[id].Status,
			CreatedAt: submission.CreatedAt,
		})
	}
	return summaries, nil
}

// WithTx implements store.TaskStore.WithTx; the mock just returns itself.
func (s *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return s
}

// StatusHistory returns the ordered statuses a record has passed through.
func (s *MockTaskStore) StatusHistory(taskID uuid.UUID) []domain.TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]domain.TaskStatus, len(s.statusHistory[taskID]))
	copy(history, s.statusHistory[taskID])
	return history
}

// MustCreatePair is a test helper that seeds a submission/record pair and
// returns the submission.
func (s *MockTaskStore) MustCreatePair(taskType, input string) *domain.TaskSubmission {
	submission, err := domain.NewTaskSubmission(uuid.Nil, taskType, input)
	if err != nil {
		panic(err)
	}
	if err := s.CreateTaskPair(context.Background(), submission); err != nil {
		panic(err)
	}
	return submission
}
