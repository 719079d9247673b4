// Package service provides application-level services for submitting tasks,
// reading their progress and authenticating accounts.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrUnknownTaskType indicates a submission named a task type no
	// registered processor handles. API layer should map this to HTTP 404.
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrInvalidCredentials indicates a login attempt with a wrong username
	// or password. API layer should map this to HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
