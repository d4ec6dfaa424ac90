// Package exitcode defines the process exit codes of prodexa.
package exitcode

const (
	// Success indicates the command completed.
	Success = 0

	// UserError indicates bad arguments, a validation failure, or an unknown task.
	UserError = 1

	// AuthError indicates a missing session, rejected credentials, or a forced logout.
	AuthError = 2

	// BackendError indicates an API, network, or storage failure.
	BackendError = 3
)
