package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// Result message prefixes persisted into failed task records. Readers of the
// raw result rely on these, so they are part of the store's observable
// contract rather than log-only strings.
const (
	executionErrorPrefix = "Error during execution: "
	systemErrorPrefix    = "System error during processing: "
)

// ExecutorConfig holds configuration for the Executor.
type ExecutorConfig struct {
	// HandlerTimeout bounds a single processor invocation. Zero disables the
	// bound, matching the legacy behavior where a hung processor holds its
	// task in "processing" indefinitely.
	HandlerTimeout time.Duration
}

// Executor drives one task at a time through its state machine: it marks the
// task processing, resolves and invokes the registered processor, and commits
// the terminal outcome. All failures are contained; Run never panics and
// never returns an error, because nothing downstream awaits it.
type Executor struct {
	store    store.TaskStore
	registry *Registry
	config   ExecutorConfig
	logger   *slog.Logger
}

// NewExecutor creates an Executor over the given store and registry.
func NewExecutor(taskStore store.TaskStore, registry *Registry, config ExecutorConfig, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}

	return &Executor{
		store:    taskStore,
		registry: registry,
		config:   config,
		logger:   log.With(slog.String("component", "task_executor")),
	}
}

// Run executes one task to a terminal state. It is invoked exactly once per
// submitted task, asynchronously, decoupled from the request that created
// the task. Errors raised by any step are caught here: recoverable ones are
// persisted into the task record, and a failure of the pipeline itself
// triggers one best-effort attempt to force the record to failed.
func (e *Executor) Run(ctx context.Context, taskID uuid.UUID, inputPayload, taskType string) {
	log := e.logger.With(
		slog.String("task_id", taskID.String()),
		slog.String("task_type", taskType),
	)

	if err := e.execute(ctx, log, taskID, inputPayload, taskType); err != nil {
		e.recoverFailure(ctx, log, taskID, err)
	}
}

// execute performs the normal state-machine steps. A returned error means
// the pipeline itself broke (persistence failures, not processor failures)
// and the caller should attempt recovery.
func (e *Executor) execute(ctx context.Context, log *slog.Logger, taskID uuid.UUID, inputPayload, taskType string) error {
	// The submission/record pair must exist before execution starts. A
	// missing pair is a data-integrity precondition violation, not a normal
	// failure path: log and abort without touching anything.
	if _, err := e.store.GetSubmission(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Error("task submission missing at execution time")
			return nil
		}
		return fmt.Errorf("load submission: %w", err)
	}

	record, err := e.store.GetRecord(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Error("task record missing at execution time")
			return nil
		}
		return fmt.Errorf("load record: %w", err)
	}

	if record.IsTerminal() {
		// Already resolved; running again would violate exactly-once
		// terminal resolution.
		log.Warn("refusing to execute task already in terminal state",
			slog.String("status", string(record.Status)))
		return nil
	}

	// Commit "processing" before the processor starts so readers never see
	// the task disappear mid-flight.
	if err := e.store.UpdateRecordStatus(ctx, taskID, domain.TaskStatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	// Defensive re-check of the registry: submission already validated the
	// type, but the registry may have been rebuilt since.
	proc, ok := e.registry.Lookup(taskType)
	if !ok {
		log.Error("processor not found at execution time")
		message := fmt.Sprintf("Task type '%s' not found", taskType)
		if err := e.store.UpdateRecordStatus(ctx, taskID, domain.TaskStatusFailed, message); err != nil {
			return fmt.Errorf("mark failed (unknown type): %w", err)
		}
		return nil
	}

	log.Info("executing task")
	output, invokeErr := e.invoke(ctx, proc, inputPayload)

	if invokeErr != nil {
		log.Error("task execution failed", slog.String("error", invokeErr.Error()))
		message := executionErrorPrefix + invokeErr.Error()
		if err := e.store.UpdateRecordStatus(ctx, taskID, domain.TaskStatusFailed, message); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		return nil
	}

	if err := e.store.UpdateRecordStatus(ctx, taskID, domain.TaskStatusCompleted, output); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	log.Info("task completed")
	return nil
}

// invoke runs the processor with panic containment and the optional
// execution bound. A panicking processor is reported as an ordinary error so
// it can never take down a worker.
func (e *Executor) invoke(ctx context.Context, proc Processor, input string) (result string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("processor panicked: %v", p)
		}
	}()

	if e.config.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.HandlerTimeout)
		defer cancel()
	}

	return proc(ctx, input)
}

// recoverFailure is the outer safety net: when the pipeline itself failed,
// reload the record and force it to failed so the task still reaches a
// terminal, inspectable state. If that also fails, give up silently; no
// caller is waiting on this execution.
func (e *Executor) recoverFailure(ctx context.Context, log *slog.Logger, taskID uuid.UUID, cause error) {
	log.Error("task pipeline failure, attempting recovery",
		slog.String("error", cause.Error()))

	record, err := e.store.GetRecord(ctx, taskID)
	if err != nil {
		log.Error("recovery failed, task record unreadable",
			slog.String("error", err.Error()))
		return
	}

	if record.IsTerminal() {
		// The terminal commit made it through even though something after it
		// failed; nothing to repair.
		log.Warn("task already terminal, skipping recovery",
			slog.String("status", string(record.Status)))
		return
	}

	message := systemErrorPrefix + cause.Error()
	if err := e.store.UpdateRecordStatus(ctx, taskID, domain.TaskStatusFailed, message); err != nil {
		log.Error("recovery failed, could not force task record to failed",
			slog.String("error", err.Error()))
	}
}
