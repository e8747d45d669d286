package models

import "errors"

// Domain errors shared by the repository, service and API layers. The HTTP
// layer maps them to status codes with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("username or email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrSelfRequest         = errors.New("cannot request your own skill")
	ErrNotFoundOrForbidden = errors.New("not found or not authorized")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
)
