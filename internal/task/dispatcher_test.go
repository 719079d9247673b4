package task

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("dispatched task reaches a terminal state", func(t *testing.T) {
		t.Parallel()

		mockStore := NewMockTaskStore()
		executor := newTestExecutor(t, mockStore, echoProvider("echo"))
		dispatcher := NewDispatcher(executor, DispatcherConfig{WorkerCount: 2, QueueSize: 10}, discardLogger())
		dispatcher.Start()
		defer dispatcher.Stop()

		submission := mockStore.MustCreatePair("echo", "hello")
		require.NoError(t, dispatcher.Dispatch(submission.ID, submission.InputText, submission.TaskType))

		require.Eventually(t, func() bool {
			record, err := mockStore.GetRecord(context.Background(), submission.ID)
			return err == nil && record.IsTerminal()
		}, 2*time.Second, 5*time.Millisecond)

		record := requireRecord(t, mockStore, submission.ID)
		assert.Equal(t, domain.TaskStatusCompleted, record.Status)
		assert.Equal(t, "hello", record.Result)
	})

	t.Run("does not block on execution", func(t *testing.T) {
		t.Parallel()

		mockStore := NewMockTaskStore()
		release := make(chan struct{})
		slow := NewProvider("slow", func(ctx context.Context, input string) (string, error) {
			<-release
			return input, nil
		})
		executor := newTestExecutor(t, mockStore, slow)
		dispatcher := NewDispatcher(executor, DispatcherConfig{WorkerCount: 1, QueueSize: 10}, discardLogger())
		dispatcher.Start()

		submission := mockStore.MustCreatePair("slow", "payload")

		start := time.Now()
		require.NoError(t, dispatcher.Dispatch(submission.ID, submission.InputText, submission.TaskType))
		assert.Less(t, time.Since(start), time.Second, "Dispatch must return before execution finishes")

		close(release)
		dispatcher.Stop()
	})

	t.Run("queue full", func(t *testing.T) {
		t.Parallel()

		mockStore := NewMockTaskStore()
		executor := newTestExecutor(t, mockStore, echoProvider("echo"))
		// Never started: nothing drains the queue.
		dispatcher := NewDispatcher(executor, DispatcherConfig{WorkerCount: 1, QueueSize: 1}, discardLogger())

		require.NoError(t, dispatcher.Dispatch(uuid.New(), "a", "echo"))
		err := dispatcher.Dispatch(uuid.New(), "b", "echo")
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("dispatch after stop", func(t *testing.T) {
		t.Parallel()

		mockStore := NewMockTaskStore()
		executor := newTestExecutor(t, mockStore, echoProvider("echo"))
		dispatcher := NewDispatcher(executor, DefaultDispatcherConfig(), discardLogger())
		dispatcher.Start()
		dispatcher.Stop()

		err := dispatcher.Dispatch(uuid.New(), "payload", "echo")
		assert.ErrorIs(t, err, ErrDispatcherStopped)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		t.Parallel()

		mockStore := NewMockTaskStore()
		executor := newTestExecutor(t, mockStore, echoProvider("echo"))
		dispatcher := NewDispatcher(executor, DefaultDispatcherConfig(), discardLogger())
		dispatcher.Start()

		require.NotPanics(t, func() {
			dispatcher.Stop()
			dispatcher.Stop()
		})
	})
}

func TestDispatcher_ConcurrentTasks(t *testing.T) {
	t.Parallel()

	// Scenario: two tasks with different IDs and the same task type, whose
	// processor sleeps briefly before returning its input length. Both must
	// complete independently with their own results.
	mockStore := NewMockTaskStore()
	length := NewProvider("length", func(ctx context.Context, input string) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return strconv.Itoa(len(input)), nil
	})
	executor := newTestExecutor(t, mockStore, length)
	dispatcher := NewDispatcher(executor, DispatcherConfig{WorkerCount: 2, QueueSize: 10}, discardLogger())
	dispatcher.Start()
	defer dispatcher.Stop()

	first := mockStore.MustCreatePair("length", "abc")
	second := mockStore.MustCreatePair("length", "abcdefgh")

	require.NoError(t, dispatcher.Dispatch(first.ID, first.InputText, first.TaskType))
	require.NoError(t, dispatcher.Dispatch(second.ID, second.InputText, second.TaskType))

	require.Eventually(t, func() bool {
		a, errA := mockStore.GetRecord(context.Background(), first.ID)
		b, errB := mockStore.GetRecord(context.Background(), second.ID)
		return errA == nil && errB == nil && a.IsTerminal() && b.IsTerminal()
	}, 2*time.Second, 5*time.Millisecond)

	firstRecord := requireRecord(t, mockStore, first.ID)
	secondRecord := requireRecord(t, mockStore, second.ID)
	assert.Equal(t, domain.TaskStatusCompleted, firstRecord.Status)
	assert.Equal(t, "3", firstRecord.Result)
	assert.Equal(t, domain.TaskStatusCompleted, secondRecord.Status)
	assert.Equal(t, "8", secondRecord.Result)
}
