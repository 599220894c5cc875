package transport

import "errors"

var (
	// ErrNotFound is returned by Fetch for an unknown delivery id.
	ErrNotFound = errors.New("transport: not found")
	// ErrInvalidID is returned for delivery ids that are not CIDs.
	ErrInvalidID = errors.New("transport: invalid delivery id")
	// ErrIDMismatch is returned when a payload does not hash to its id.
	ErrIDMismatch = errors.New("transport: delivery id mismatch")
)
