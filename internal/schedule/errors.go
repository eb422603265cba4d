package schedule

import "errors"

var (
	// ErrInvalidTimeRange is a validation error: the start is not before the end.
	ErrInvalidTimeRange = errors.New("end time must be after start time")

	// ErrInvalidMonth is a validation error for calendar queries.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")

	// ErrConflict is returned when the requested interval overlaps an existing reservation.
	ErrConflict = errors.New("desk is already reserved for the selected time period")

	// ErrDeskNotFound is returned for desk ids absent from the configuration.
	ErrDeskNotFound = errors.New("desk not found")

	// ErrReservationNotFound is returned when a cancellation matches nothing.
	ErrReservationNotFound = errors.New("reservation not found")
)
