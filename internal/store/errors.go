package store

import "errors"

var (
	// ErrNotFound is returned when no row matches the query.
	ErrNotFound = errors.New("record not found")

	// ErrUserExists is returned when the username or email is already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrOverlap is returned when a reservation would intersect an existing one on the same desk.
	ErrOverlap = errors.New("reservation overlaps an existing reservation")
)
