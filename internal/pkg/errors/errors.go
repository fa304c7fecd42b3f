package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateSignIn is returned when today's sign-in bit is already set.
	ErrDuplicateSignIn = errors.New("already signed in today")
	// ErrQueueFull is returned when a delay queue refuses new work.
	ErrQueueFull = errors.New("queue full")
)
