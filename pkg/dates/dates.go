package dates

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Date is a civil calendar date formatted as YYYY-MM-DD. There is no
// time-of-day component; all dates in the tracker live in a single fixed
// zone, so string comparison matches chronological order.
type Date string

// zone is used only to resolve "today" from the wall clock. Date arithmetic
// itself is zone-independent because civil dates carry no time-of-day.
var zone = defaultZone()

func defaultZone() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}

	return time.FixedZone("JST", 9*60*60)
}

// SetZone changes the zone used to resolve Today, e.g. from a config file.
func SetZone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("error loading timezone %q: %w", name, err)
	}

	zone = loc

	return nil
}

// Today returns the current civil date in the tracker's zone. It reads the
// clock on every call; nothing is cached.
func Today() Date {
	return FromTime(time.Now().In(zone))
}

// Tomorrow returns the day after Today.
func Tomorrow() Date {
	return Today().AddDays(1)
}

// FromTime converts a time to the civil date it falls on, in its own location.
func FromTime(t time.Time) Date {
	return Date(t.Format(layout))
}

// Parse validates a YYYY-MM-DD string and returns it as a Date.
func Parse(s string) (Date, error) {
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}

	return FromTime(t), nil
}

// Valid reports whether d is a well-formed calendar date.
func (d Date) Valid() bool {
	_, err := Parse(string(d))

	return err == nil
}

// AddDays returns the date n days after d (n may be negative), with proper
// month, year, and leap-year rollover. The arithmetic runs at UTC midnight so
// no zone offset can shift the civil result. Malformed dates are returned
// unchanged.
func (d Date) AddDays(n int) Date {
	t, err := time.ParseInLocation(layout, string(d), time.UTC)
	if err != nil {
		return d
	}

	return Date(t.AddDate(0, 0, n).Format(layout))
}

// Compare returns -1, 0, or 1 as a is before, equal to, or after b.
func Compare(a, b Date) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}
