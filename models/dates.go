package models

import (
	"errors"
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD or RFC3339")

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date at
// midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateOnly(t), nil
	}
	return time.Time{}, ErrInvalidDate
}

// DateOnly truncates t to its calendar date in t's own location, expressed
// as midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NightsBetween is ceil((out - in) / 24h). It is zero or negative when out
// is not after in.
func NightsBetween(in, out time.Time) int {
	hours := out.Sub(in).Hours()
	return int(math.Ceil(hours / 24))
}

// StayOverlaps reports whether [aIn, aOut) and [bIn, bOut) share at least one
// night. A stay ending on the day another starts does not overlap it.
func StayOverlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}
