package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// FormLayout is the wire format of booking form fields and JSON reservation times.
	FormLayout = "2006-01-02T15:04"
	// ListLayout is used when listing a user's reservations.
	ListLayout = "2006-01-02 15:04"
	// SummaryLayout is used in confirmation messages and QR payloads.
	SummaryLayout = "2006-01-02 15:04:05"
)

// DateTime parses a timezone-naive YYYY-MM-DDTHH:MM value. The result is
// expressed in UTC so that stored wall times compare consistently.
func DateTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	t, err := time.ParseInLocation(FormLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse datetime %q: %w", raw, err)
	}
	return t, nil
}

// ID parses a positive integer identifier such as a desk or reservation id.
func ID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse id %q: %w", raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", n)
	}
	return n, nil
}

// YearMonth validates calendar path parameters.
func YearMonth(rawYear, rawMonth string) (int, time.Month, error) {
	year, err := strconv.Atoi(strings.TrimSpace(rawYear))
	if err != nil {
		return 0, 0, fmt.Errorf("unable to parse year %q: %w", rawYear, err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(rawMonth))
	if err != nil {
		return 0, 0, fmt.Errorf("unable to parse month %q: %w", rawMonth, err)
	}
	return year, time.Month(month), nil
}
