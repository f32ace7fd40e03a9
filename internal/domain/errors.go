package domain

import "errors"

// Services and stores wrap these with fmt.Errorf("...: %w") so the HTTP layer
// and the agent client can branch on them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrUnavailable  = errors.New("unavailable") // a backing store or relay could not be reached
)
