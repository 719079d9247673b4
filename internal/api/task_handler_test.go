package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// taskRouter mounts the handler on its real routes so URL parameters resolve.
func taskRouter(handler *TaskHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/tasks", handler.Submit)
	r.Get("/api/tasks", handler.ListTasks)
	r.Get("/api/tasks/{id}", handler.GetTask)
	r.Get("/api/tasks/{id}/result", handler.GetResult)
	r.Get("/api/task-types", handler.ListTaskTypes)
	return r
}

// authedRequest builds a request that looks like it already passed the auth
// middleware.
func authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), shared.AccountIDContextKey, uuid.New())
	return req.WithContext(ctx)
}

func TestTaskHandler_Submit(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		submission := &domain.TaskSubmission{ID: uuid.New(), TaskType: "word_stats"}
		svc := &mockTaskService{
			SubmitFn: func(ctx context.Context, accountID uuid.UUID, taskType, inputText string) (*domain.TaskSubmission, error) {
				assert.Equal(t, "word_stats", taskType)
				assert.Equal(t, "some text", inputText)
				return submission, nil
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		body, _ := json.Marshal(SubmitTaskRequest{TaskType: "word_stats", InputText: "some text"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/tasks", body))

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp SubmitTaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, submission.ID, resp.TaskID)
		assert.Equal(t, "Task submitted successfully", resp.Message)
	})

	t.Run("unknown task type", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			SubmitFn: func(ctx context.Context, accountID uuid.UUID, taskType, inputText string) (*domain.TaskSubmission, error) {
				return nil, service.NewTaskServiceError("submit", "no such type", service.ErrUnknownTaskType)
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		body, _ := json.Marshal(SubmitTaskRequest{TaskType: "nonexistent", InputText: "x"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/tasks", body))

		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Task type 'nonexistent' not found", resp.Error)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		router := taskRouter(NewTaskHandler(&mockTaskService{}))

		body, _ := json.Marshal(map[string]string{"task_type": "word_stats"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/tasks", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		router := taskRouter(NewTaskHandler(&mockTaskService{}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/tasks", []byte("{nope")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		router := taskRouter(NewTaskHandler(&mockTaskService{}))

		body, _ := json.Marshal(SubmitTaskRequest{TaskType: "word_stats", InputText: "x"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("scheduling failure", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			SubmitFn: func(ctx context.Context, accountID uuid.UUID, taskType, inputText string) (*domain.TaskSubmission, error) {
				return nil, service.NewTaskServiceError("submit", "failed to schedule task", errors.New("queue full"))
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		body, _ := json.Marshal(SubmitTaskRequest{TaskType: "word_stats", InputText: "x"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/tasks", body))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "queue full")
	})
}

func TestTaskHandler_GetTask(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		taskID := uuid.New()
		completedAt := time.Now().UTC()
		svc := &mockTaskService{
			GetTaskFn: func(ctx context.Context, id uuid.UUID) (*service.TaskDetail, error) {
				assert.Equal(t, taskID, id)
				return &service.TaskDetail{
					ID:          taskID,
					TaskType:    "word_stats",
					InputText:   "hello",
					Status:      domain.TaskStatusCompleted,
					Result:      "Lines: 1",
					CompletedAt: &completedAt,
				}, nil
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/tasks/"+taskID.String(), nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskDetailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, taskID, resp.ID)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, "Lines: 1", resp.Result)
		assert.NotNil(t, resp.CompletedAt)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			GetTaskFn: func(ctx context.Context, id uuid.UUID) (*service.TaskDetail, error) {
				return nil, store.ErrTaskNotFound
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/tasks/"+uuid.New().String(), nil))

		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Task not found", resp.Error)
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		router := taskRouter(NewTaskHandler(&mockTaskService{}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/tasks/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Parallel()

	t.Run("returns summaries", func(t *testing.T) {
		t.Parallel()

		summaries := []store.TaskSummary{
			{ID: uuid.New(), TaskType: "word_stats", Status: domain.TaskStatusCompleted},
			{ID: uuid.New(), TaskType: "source_outline", Status: domain.TaskStatusPending},
		}
		svc := &mockTaskService{
			ListTasksFn: func(ctx context.Context) ([]store.TaskSummary, error) {
				return summaries, nil
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/tasks", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Tasks, 2)
	})

	t.Run("empty listing is an empty array", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			ListTasksFn: func(ctx context.Context) ([]store.TaskSummary, error) {
				return nil, nil
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/tasks", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"tasks":[]`)
	})
}

func TestTaskHandler_GetResult(t *testing.T) {
	t.Parallel()

	t.Run("raw result as plain text", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			GetResultFn: func(ctx context.Context, id uuid.UUID) (string, error) {
				return "Lines: 3\nWords: 12\nCharacters: 70", nil
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/tasks/"+uuid.New().String()+"/result", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.Equal(t, "Lines: 3\nWords: 12\nCharacters: 70", rec.Body.String())
	})

	t.Run("no result yet yields empty body", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			GetResultFn: func(ctx context.Context, id uuid.UUID) (string, error) {
				return "", nil
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/tasks/"+uuid.New().String()+"/result", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		svc := &mockTaskService{
			GetResultFn: func(ctx context.Context, id uuid.UUID) (string, error) {
				return "", store.ErrTaskNotFound
			},
		}
		router := taskRouter(NewTaskHandler(svc))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/tasks/"+uuid.New().String()+"/result", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskHandler_ListTaskTypes(t *testing.T) {
	t.Parallel()

	svc := &mockTaskService{
		TaskTypesFn: func() []string {
			return []string{"source_outline", "word_stats"}
		},
	}
	router := taskRouter(NewTaskHandler(svc))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/task-types", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TaskTypesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"source_outline", "word_stats"}, resp.TaskTypes)
}
