package timex

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the calendar-date form accepted by the entries filter.
const dateLayout = "2006-01-02"

// LoadLocation resolves a timezone name. An empty name or "Local" means the
// server's local zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable millisecond of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
}

// DayBounds returns the inclusive [start, end] range of t's calendar day in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	return StartOfDay(t, loc), EndOfDay(t, loc)
}

// ParseDate accepts "YYYY-MM-DD" (interpreted in loc) or an RFC 3339 timestamp.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}
