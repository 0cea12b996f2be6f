package contacts

import "errors"

var (
	// ErrNotFound is returned when no contact matches the lookup.
	ErrNotFound = errors.New("contact not found")

	// ErrDuplicate is returned by Store.Insert when a contact with the same
	// (email, phone) pair already exists.
	ErrDuplicate = errors.New("contact already exists")
)
