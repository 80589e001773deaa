// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, missing file, unknown flag).
	UserError = 1

	// AuthError indicates the API token is missing or rejected.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3

	// Aborted indicates the user declined a destructive confirmation.
	Aborted = 4

	// PartialFailure indicates the batch finished but some items failed.
	PartialFailure = 5
)
