package analytics

import "errors"

var (
	// ErrNotFound reports a missing session or inquiry.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput reports a missing or empty required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotReady reports an operation that requires the inquiry to have
	// reached the done stage.
	ErrNotReady = errors.New("processing not complete")
)
