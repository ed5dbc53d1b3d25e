package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("insufficient tier")
	ErrLockHeld     = errors.New("lock already held")
	ErrInvalidAlert = errors.New("invalid alert payload")
	ErrContextDone  = errors.New("context cancelled")
)
