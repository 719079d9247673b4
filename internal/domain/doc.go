// Package domain contains the core entities of the task processing service:
// accounts, task submissions (the immutable input of one unit of work), and
// task records (the mutable execution state paired 1:1 with a submission).
// Entities validate themselves and enforce their own state transitions;
// persistence and transport concerns live elsewhere.
package domain
