package task

import (
	"log/slog"
	"sort"
	"sync/atomic"
)

// snapshot is one immutable generation of the registry contents.
type snapshot map[string]Processor

// Registry is the process-wide mapping from task-type name to Processor.
// Discovery builds a complete replacement map and swaps it in atomically,
// so Lookup and Types stay safe against a registry being rebuilt
// underneath them and always observe a single consistent generation.
type Registry struct {
	current atomic.Pointer[snapshot]
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	r := &Registry{
		logger: log.With(slog.String("component", "processor_registry")),
	}
	empty := snapshot{}
	r.current.Store(&empty)
	return r
}

// Discover rebuilds the registry from the given providers. The previous
// contents are discarded, never merged. A provider that fails to load is
// logged and skipped without aborting the pass; when two providers share a
// name the last one wins (re-registration).
func (r *Registry) Discover(providers ...Provider) {
	next := make(snapshot, len(providers))

	for _, provider := range providers {
		name := provider.Name()
		if name == "" {
			r.logger.Warn("skipping provider with empty name")
			continue
		}

		proc, err := provider.Processor()
		if err != nil {
			r.logger.Error("failed to load task processor",
				slog.String("task_type", name),
				slog.String("error", err.Error()))
			continue
		}
		if proc == nil {
			r.logger.Warn("provider returned nil processor",
				slog.String("task_type", name))
			continue
		}

		if _, exists := next[name]; exists {
			r.logger.Warn("replacing previously registered processor",
				slog.String("task_type", name))
		}
		next[name] = proc
		r.logger.Info("loaded task processor", slog.String("task_type", name))
	}

	if len(next) == 0 {
		r.logger.Warn("no task processors registered")
	}

	r.current.Store(&next)
}

// Lookup returns the processor registered under the given task type.
// It is a pure read against the current snapshot.
func (r *Registry) Lookup(taskType string) (Processor, bool) {
	proc, ok := (*r.current.Load())[taskType]
	return proc, ok
}

// Has reports whether a processor is registered under the given task type.
func (r *Registry) Has(taskType string) bool {
	_, ok := r.Lookup(taskType)
	return ok
}

// Types returns the sorted task-type names of the current snapshot.
func (r *Registry) Types() []string {
	current := *r.current.Load()
	types := make([]string, 0, len(current))
	for name := range current {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
