package services

import "errors"

var (
	// ErrNotFound means the referenced order or job does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the order is not in the status the operation
	// requires.
	ErrInvalidState = errors.New("invalid order state")

	// ErrNoUploads means training was requested before any selfies were
	// uploaded.
	ErrNoUploads = errors.New("no uploads for order")
)
