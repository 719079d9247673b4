// Package store defines the persistence interfaces and shared error types
// used by the service. Concrete implementations live under
// internal/platform (PostgreSQL) and in in-package test doubles.
package store
