// Package task is the orchestration core of the service. It holds the
// processor registry (name -> invocable handler, rebuilt atomically by a
// discovery pass), the executor that drives each task through the
// pending -> processing -> {completed, failed} state machine, and the
// dispatcher that schedules executions off the request path. The package
// guarantees that every scheduled task reaches a terminal, inspectable
// state even when a processor panics or the persistence layer fails
// mid-update.
package task
