// Package processors contains the built-in task processors shipped with the
// server. Each processor is exposed as a task.Provider so the registry can
// discover it at startup; Default returns the full built-in set.
package processors
