package store

import "errors"

// Common store errors for use with errors.Is()
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
	// ErrConflict is returned when a conditional update lost a race with
	// another writer.
	ErrConflict = errors.New("concurrent modification")
	// ErrInvalid is returned when a write breaks a column constraint, such
	// as a malformed license code or an unknown status.
	ErrInvalid = errors.New("invalid value")
	// ErrUnavailable is returned by every operation of a store that could
	// not be initialized.
	ErrUnavailable = errors.New("datastore unavailable")
)
