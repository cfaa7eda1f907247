package domain

import "errors"

// Error kinds returned by the core. Callers decide whether to retry; the
// core never retries on its own. The HTTP layer maps these onto status
// codes with errors.Is.
var (
	// ErrNotFound: the vehicle or reservation does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a date overlap, or an event received while the
	// reservation is already in or past the target state.
	ErrConflict = errors.New("conflict")
	// ErrForbidden: the actor is neither the owning renter nor an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidRange: end <= start, or an early-return date outside
	// (start, currentEnd).
	ErrInvalidRange = errors.New("invalid date range")
	// ErrValidation: missing or malformed input.
	ErrValidation = errors.New("validation failed")
)
