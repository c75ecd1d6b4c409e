// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown id, empty content).
	UserError = 1

	// ConfigError indicates the record store is not configured.
	ConfigError = 2

	// BackendError indicates a record store or network error.
	BackendError = 3
)
