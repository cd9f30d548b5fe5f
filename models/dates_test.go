package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-01-10T22:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "10/01/2024", "2024-13-01", "tomorrow"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestNightsBetween(t *testing.T) {
	assert.Equal(t, 2, NightsBetween(day("2024-01-10"), day("2024-01-12")))
	assert.Equal(t, 0, NightsBetween(day("2024-01-10"), day("2024-01-10")))
	assert.Equal(t, -1, NightsBetween(day("2024-01-11"), day("2024-01-10")))
	assert.Equal(t, 1, NightsBetween(day("2024-01-10"), day("2024-01-10").Add(3*time.Hour)))
}

func TestStayOverlapsIsHalfOpenAndSymmetric(t *testing.T) {
	ranges := [][2]string{
		{"2024-01-10", "2024-01-12"},
		{"2024-01-12", "2024-01-14"},
		{"2024-01-11", "2024-01-13"},
		{"2024-01-01", "2024-01-31"},
		{"2024-01-14", "2024-01-15"},
	}
	for _, a := range ranges {
		for _, b := range ranges {
			ab := StayOverlaps(day(a[0]), day(a[1]), day(b[0]), day(b[1]))
			ba := StayOverlaps(day(b[0]), day(b[1]), day(a[0]), day(a[1]))
			assert.Equal(t, ab, ba, "%v vs %v", a, b)
		}
	}

	// checkout day is free for the next check-in
	assert.False(t, StayOverlaps(day("2024-01-10"), day("2024-01-12"), day("2024-01-12"), day("2024-01-14")))
	assert.True(t, StayOverlaps(day("2024-01-10"), day("2024-01-12"), day("2024-01-11"), day("2024-01-13")))
}
