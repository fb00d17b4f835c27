package domain

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable is returned when the backend an operation needs is not configured.
	ErrUnavailable = errors.New("backend unavailable")
)
