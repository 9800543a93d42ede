// Package dates reconciles the two calendar-date formats the stored data
// carries: ISO YYYY-MM-DD and the legacy US MM/DD/YYYY.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	ISOLayout = "2006-01-02"
	USLayout  = "01/02/2006"
)

// Today returns the current UTC calendar date in ISO form.
func Today() string {
	return time.Now().UTC().Format(ISOLayout)
}

// NormalizeISO parses a date given in either accepted format and returns
// it in ISO form.
func NormalizeISO(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(ISOLayout, s); err == nil {
		return t.Format(ISOLayout), nil
	}
	if t, err := time.Parse(USLayout, s); err == nil {
		return t.Format(ISOLayout), nil
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// SameDay reports whether two date strings, each in either accepted
// format, name the same calendar date. Unparseable values only match by
// string equality.
func SameDay(a, b string) bool {
	na, errA := NormalizeISO(a)
	nb, errB := NormalizeISO(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return na == nb
}

// DayBounds returns the inclusive UTC start and end instants of the given
// ISO date.
func DayBounds(iso string) (time.Time, time.Time, error) {
	day, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date %q: %w", iso, err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)
	return start, end, nil
}
