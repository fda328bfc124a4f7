package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrHost marks failures of the host graph (API call or file access).
	ErrHost = errors.New("host unavailable")
)
