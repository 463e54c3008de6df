// Package exitcode defines exit codes for the kanban client.
package exitcode

const (
	Success = 0

	// UserError covers bad arguments, unknown cards and rejected input.
	UserError = 1

	// AuthError means no session, or the server rejected it.
	AuthError = 2

	// BackendError covers network failures and 5xx responses.
	BackendError = 3
)
