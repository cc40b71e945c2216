package services

import "errors"

// Service error taxonomy. Handlers map these to HTTP statuses; anything
// unrecognized collapses to a generic 500 with the cause logged server-side.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidRange      = errors.New("invalid range")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnavailable       = errors.New("store unavailable")
	ErrConflict          = errors.New("conflict")
)
