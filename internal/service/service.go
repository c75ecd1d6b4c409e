// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for record store operations.
// All remote calls go through this interface.
// Commands and surfaces never import a backend directly.
type Service interface {
	// ListTasks returns every task ordered by ID descending.
	// Ordering is part of the store's query, not a client-side sort.
	ListTasks(ctx context.Context) ([]Task, error)

	// InsertTask creates a task and returns the rows the store echoed back.
	// A successful call may return zero rows; callers must not guess the
	// shape of the new record in that case.
	InsertTask(ctx context.Context, t NewTask) ([]Task, error)

	// SetDone updates the done flag of the task with the given ID and
	// returns the updated rows.
	SetDone(ctx context.Context, id int64, done bool) ([]Task, error)

	// DeleteTask removes the task with the given ID.
	DeleteTask(ctx context.Context, id int64) error
}
