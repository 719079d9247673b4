package task

import "context"

// Processor is an invocable unit of task logic. It consumes a task's raw
// input payload and returns the textual result to persist, or an error.
// Processors may block internally; the executor bounds the invocation with
// the context it passes in.
type Processor func(ctx context.Context, input string) (string, error)

// Provider describes one registrable processor. Providers replace the
// legacy scan-a-directory discovery: each processor module exposes a
// Provider, and the registry's discovery pass registers every provider it
// is handed, keyed by the provider's name.
type Provider interface {
	// Name returns the task-type key the processor is registered under.
	Name() string

	// Processor returns the invocable handler. Returning an error marks the
	// provider as failed to load; discovery logs it and moves on without
	// aborting the pass.
	Processor() (Processor, error)
}

// providerFunc is the trivial Provider implementation for processors that
// cannot fail to initialize.
type providerFunc struct {
	name string
	proc Processor
}

func (p providerFunc) Name() string                 { return p.name }
func (p providerFunc) Processor() (Processor, error) { return p.proc, nil }

// NewProvider wraps a ready Processor in a Provider with the given name.
func NewProvider(name string, proc Processor) Provider {
	return providerFunc{name: name, proc: proc}
}
