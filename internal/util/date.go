package util

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// StartOfDay returns 00:00:00 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DateOnly keeps the calendar date of t as stored (DATE columns come back at UTC midnight)
// and re-anchors it at midnight in loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD value from an HTML date input as midnight in loc.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DaysBetween counts whole calendar days from 'from' to 'to'. Negative when to is earlier.
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ValidateNotFutureDate rejects dates after today. Today itself is allowed.
func ValidateNotFutureDate(d, now time.Time, loc *time.Location) error {
	if StartOfDay(d, loc).After(StartOfDay(now, loc)) {
		return fmt.Errorf("date cannot be in the future")
	}
	return nil
}
