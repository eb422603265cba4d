package model

import "time"

// Reservation is a time-bounded claim by one user on one desk over [StartTime, EndTime).
type Reservation struct {
	ID        int64     `gorm:"primaryKey"`
	DeskID    int64     `gorm:"index:idx_reservation_desk_window;not null"`
	UserID    int64     `gorm:"index;not null"`
	StartTime time.Time `gorm:"index:idx_reservation_desk_window;not null"`
	EndTime   time.Time `gorm:"not null"`
}

// Overlaps reports whether r shares at least one instant with [start, end).
// Touching endpoints do not overlap.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}
