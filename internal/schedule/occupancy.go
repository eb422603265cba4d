package schedule

import (
	"time"

	"desk-reservation-backend/internal/model"
)

// DayStatus classifies how much of a day's business window is reserved.
type DayStatus string

const (
	StatusAvailable DayStatus = "available"
	StatusPartial   DayStatus = "partial"
	StatusReserved  DayStatus = "reserved"
)

// The business window is only used for calendar classification, never for admission.
const (
	BusinessDayStartHour = 8
	BusinessDayEndHour   = 22
	BusinessWindow       = (BusinessDayEndHour - BusinessDayStartHour) * time.Hour
)

// ReservedTime sums how much of day's business window the reservations cover.
// day is interpreted as a calendar date; its clock time is ignored.
func ReservedTime(day time.Time, reservations []model.Reservation) time.Duration {
	y, m, d := day.Date()
	open := time.Date(y, m, d, BusinessDayStartHour, 0, 0, 0, time.UTC)
	closing := time.Date(y, m, d, BusinessDayEndHour, 0, 0, 0, time.UTC)

	var total time.Duration
	for _, r := range reservations {
		start := r.StartTime.UTC()
		if start.Before(open) {
			start = open
		}
		end := r.EndTime.UTC()
		if end.After(closing) {
			end = closing
		}
		// Reservations outside the window clamp to a non-positive span.
		if end.After(start) {
			total += end.Sub(start)
		}
	}
	return total
}

// Classify maps reserved time within one business window to a status.
func Classify(reserved time.Duration) DayStatus {
	switch {
	case reserved >= BusinessWindow:
		return StatusReserved
	case reserved > 0:
		return StatusPartial
	default:
		return StatusAvailable
	}
}

// MonthlyStatus returns a status for every valid day of the month, keyed by day of month.
func MonthlyStatus(year int, month time.Month, reservations []model.Reservation) map[int]DayStatus {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := make(map[int]DayStatus, 31)
	for day := first; day.Month() == month; day = day.AddDate(0, 0, 1) {
		days[day.Day()] = Classify(ReservedTime(day, reservations))
	}
	return days
}
