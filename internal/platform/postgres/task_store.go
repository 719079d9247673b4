package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/platform/logger"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX, log *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// CreateTaskPair implements store.TaskStore.CreateTaskPair.
// When backed by a plain connection the two inserts run inside their own
// transaction; a store already bound to a transaction via WithTx inserts
// directly and lets the owner commit.
func (s *PostgresTaskStore) CreateTaskPair(ctx context.Context, submission *domain.TaskSubmission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := submission.Validate(); err != nil {
		log.Warn("task submission validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", submission.ID.String()))
		return err
	}

	record, err := domain.NewTaskRecord(submission.ID)
	if err != nil {
		return err
	}

	if db, ok := s.db.(*sql.DB); ok {
		err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).(*PostgresTaskStore).insertPair(ctx, submission, record)
		})
	} else {
		err = s.insertPair(ctx, submission, record)
	}

	if err != nil {
		log.Error("failed to create task pair",
			slog.String("error", err.Error()),
			slog.String("task_id", submission.ID.String()),
			slog.String("task_type", submission.TaskType))
		return err
	}

	log.Info("task pair created",
		slog.String("task_id", submission.ID.String()),
		slog.String("task_type", submission.TaskType))
	return nil
}

func (s *PostgresTaskStore) insertPair(
	ctx context.Context,
	submission *domain.TaskSubmission,
	record *domain.TaskRecord,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_submissions (id, input_text, task_type, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		submission.ID,
		submission.InputText,
		submission.TaskType,
		nullUUID(submission.AccountID),
		submission.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO task_records (task_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`,
		record.TaskID,
		record.Status,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// GetSubmission implements store.TaskStore.GetSubmission
func (s *PostgresTaskStore) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.TaskSubmission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, input_text, task_type, account_id, created_at
		FROM task_submissions
		WHERE id = $1
	`

	var submission domain.TaskSubmission
	var accountID uuid.NullUUID

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&submission.ID,
		&submission.InputText,
		&submission.TaskType,
		&accountID,
		&submission.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task submission not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task submission",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	submission.AccountID = accountID.UUID
	return &submission, nil
}

// GetRecord implements store.TaskStore.GetRecord
func (s *PostgresTaskStore) GetRecord(ctx context.Context, taskID uuid.UUID) (*domain.TaskRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT task_id, status, result, created_at, updated_at, completed_at
		FROM task_records
		WHERE task_id = $1
	`

	var record domain.TaskRecord
	var status string
	var result sql.NullString
	var completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, taskID).Scan(
		&record.TaskID,
		&status,
		&result,
		&record.CreatedAt,
		&record.UpdatedAt,
		&completedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task record not found", slog.String("task_id", taskID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task record",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	record.Status = domain.TaskStatus(status)
	record.Result = result.String
	if completedAt.Valid {
		t := completedAt.Time
		record.CompletedAt = &t
	}
	return &record, nil
}

// UpdateRecordStatus implements store.TaskStore.UpdateRecordStatus.
// The guard on the current status makes terminal states sticky: a record
// that already reached completed or failed is never rewritten.
func (s *PostgresTaskStore) UpdateRecordStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status domain.TaskStatus,
	result string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidTaskStatus(status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTaskStatus, status)
	}

	now := time.Now().UTC()
	terminal := status == domain.TaskStatusCompleted || status == domain.TaskStatusFailed

	query := `
		UPDATE task_records
		SET status = $1,
		    result = $2,
		    updated_at = $3,
		    completed_at = CASE WHEN $4 THEN $3 ELSE completed_at END
		WHERE task_id = $5
		  AND status NOT IN ('completed', 'failed')
	`

	res, err := s.db.ExecContext(ctx, query,
		status,
		nullString(result),
		now,
		terminal,
		taskID,
	)
	if err != nil {
		log.Error("failed to update task record status",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing record from one already resolved.
		var current string
		probeErr := s.db.QueryRowContext(ctx,
			`SELECT status FROM task_records WHERE task_id = $1`, taskID).Scan(&current)
		if probeErr != nil {
			if errors.Is(probeErr, sql.ErrNoRows) {
				log.Warn("no task record found to update",
					slog.String("task_id", taskID.String()))
				return store.ErrTaskNotFound
			}
			return MapError(probeErr)
		}
		log.Warn("refused status update on terminal task record",
			slog.String("task_id", taskID.String()),
			slog.String("current_status", current),
			slog.String("requested_status", string(status)))
		return fmt.Errorf("%w: record already %s", store.ErrUpdateFailed, current)
	}

	log.Debug("task record status updated",
		slog.String("task_id", taskID.String()),
		slog.String("status", string(status)))
	return nil
}

// ListTasks implements store.TaskStore.ListTasks
func (s *PostgresTaskStore) ListTasks(ctx context.Context) ([]store.TaskSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT s.id, s.task_type, r.status, s.created_at
		FROM task_submissions s
		JOIN task_records r ON r.task_id = s.id
		ORDER BY s.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close task rows", slog.String("error", closeErr.Error()))
		}
	}()

	var summaries []store.TaskSummary
	for rows.Next() {
		var summary store.TaskSummary
		var status string
		if err := rows.Scan(&summary.ID, &summary.TaskType, &status, &summary.CreatedAt); err != nil {
			log.Error("failed to scan task summary row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		summary.Status = domain.TaskStatus(status)
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task summary rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return summaries, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullUUID converts uuid.Nil to a NULL-able SQL value.
func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
