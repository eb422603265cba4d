package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateTime(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "Standard Case",
			raw:      "2024-03-01T09:00",
			expected: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "Surrounding whitespace",
			raw:      "  2024-12-31T23:59 ",
			expected: time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC),
		},
		{name: "Empty", raw: "", expectErr: true},
		{name: "Seconds not accepted", raw: "2024-03-01T09:00:00", expectErr: true},
		{name: "Space separator", raw: "2024-03-01 09:00", expectErr: true},
		{name: "Invalid day", raw: "2024-02-30T09:00", expectErr: true},
		{name: "Garbage", raw: "tomorrow", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := DateTime(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}

func TestID(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  int64
		expectErr bool
	}{
		{name: "Standard Case", raw: "2", expected: 2},
		{name: "Whitespace", raw: " 3 ", expected: 3},
		{name: "Zero", raw: "0", expectErr: true},
		{name: "Negative", raw: "-1", expectErr: true},
		{name: "Not a number", raw: "desk", expectErr: true},
		{name: "Empty", raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ID(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, id)
			}
		})
	}
}

func TestYearMonth(t *testing.T) {
	year, month, err := YearMonth("2024", "3")
	assert.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.March, month)

	_, _, err = YearMonth("twenty", "3")
	assert.Error(t, err)

	_, _, err = YearMonth("2024", "March")
	assert.Error(t, err)
}
