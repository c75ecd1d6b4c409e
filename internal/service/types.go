// Package service defines the backend-agnostic interface for task operations.
package service

// Task represents a single to-do record as stored remotely.
type Task struct {
	ID      int64  `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
	Done    bool   `json:"done" yaml:"done"`
}

// NewTask is the payload sent on insert. The store assigns the ID.
type NewTask struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
}
