package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrAlreadyShared      = errors.New("task already shared with this user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotOwner           = errors.New("not an owner of this task")

	ErrMissingCredentials = errors.New("username and password required")
	ErrMissingCredential  = errors.New("missing credential")
	ErrInvalidGoogleToken = errors.New("invalid google token")
	ErrEmptyText          = errors.New("task text required")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrMissingShareTarget = errors.New("target username required")
)
