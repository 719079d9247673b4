package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Common errors returned by the Dispatcher
var (
	ErrQueueFull         = errors.New("dispatch queue is full")
	ErrDispatcherStopped = errors.New("dispatcher is stopped")
)

// DispatcherConfig holds configuration for the dispatcher.
type DispatcherConfig struct {
	// WorkerCount determines how many concurrent workers execute tasks.
	WorkerCount int

	// QueueSize determines the buffer size of the in-memory dispatch queue.
	QueueSize int
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// job is one scheduled execution request.
type job struct {
	taskID   uuid.UUID
	input    string
	taskType string
}

// Dispatcher is the fire-and-forget hand-off point between the submission
// gateway and the executor. Dispatch enqueues without ever blocking on task
// completion; a pool of workers drains the queue and runs each task through
// the executor. The gateway schedules at most one execution per task ID.
type Dispatcher struct {
	executor *Executor
	jobs     chan job
	config   DispatcherConfig
	logger   *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewDispatcher creates a Dispatcher over the given executor.
func NewDispatcher(executor *Executor, config DispatcherConfig, log *slog.Logger) *Dispatcher {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		executor: executor,
		jobs:     make(chan job, config.QueueSize),
		config:   config,
		logger:   log.With(slog.String("component", "task_dispatcher")),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("dispatcher started",
		slog.Int("worker_count", d.config.WorkerCount),
		slog.Int("queue_size", d.config.QueueSize))
}

// Stop shuts the dispatcher down. In-flight executions run to completion;
// jobs still queued are abandoned in whatever state they were left in
// (documented limitation, the process is going away).
func (d *Dispatcher) Stop() {
	if d.stopped.Swap(true) {
		return
	}
	d.cancel()
	d.wg.Wait()
	close(d.jobs)
	d.logger.Info("dispatcher stopped")
}

// Dispatch schedules one execution of the given task. It never blocks on the
// execution itself: the call returns as soon as the job is queued. Returns
// ErrQueueFull when the queue is at capacity and ErrDispatcherStopped after
// Stop.
func (d *Dispatcher) Dispatch(taskID uuid.UUID, inputPayload, taskType string) error {
	if d.stopped.Load() {
		return ErrDispatcherStopped
	}

	select {
	case d.jobs <- job{taskID: taskID, input: inputPayload, taskType: taskType}:
		d.logger.Debug("task dispatched",
			slog.String("task_id", taskID.String()),
			slog.String("task_type", taskType),
			slog.Int("queue_len", len(d.jobs)),
			slog.Int("queue_cap", cap(d.jobs)))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(d.jobs))
	}
}

// worker drains the job queue until the dispatcher is stopped.
func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	log := d.logger.With(slog.Int("worker_id", id))
	log.Debug("worker started")

	for {
		select {
		case <-d.ctx.Done():
			log.Debug("worker stopping")
			return

		case j, ok := <-d.jobs:
			if !ok {
				log.Debug("job queue closed, worker stopping")
				return
			}
			// Run owns all failure handling; the worker loop survives
			// anything a task does. A fresh context lets an in-flight task
			// commit its terminal state even while the dispatcher shuts down.
			d.executor.Run(context.Background(), j.taskID, j.input, j.taskType)
		}
	}
}
