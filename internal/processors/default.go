package processors

import "github.com/taskdeck/taskdeck-api/internal/task"

// Default returns the built-in provider set. cmd/server feeds this to the
// registry at startup; additional providers can be appended before discovery.
func Default() []task.Provider {
	return []task.Provider{
		SourceOutline(),
		WordStats(),
	}
}
