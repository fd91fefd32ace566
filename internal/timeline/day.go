package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dayLayout = "2006-01-02"
	minYear   = 0
	maxYear   = 9999
)

// ErrDayOutOfRange is returned for days outside years 0000 to 9999, which
// have no four-digit key.
var ErrDayOutOfRange = errors.New("day outside years 0000-9999")

func checkYear(t time.Time) error {
	if y := t.Year(); y < minYear || y > maxYear {
		return fmt.Errorf("year %d: %w", y, ErrDayOutOfRange)
	}
	return nil
}

// Day is a calendar-day key in YYYY-MM-DD form. Keys sort lexicographically
// in chronological order.
type Day string

// DayOf returns the calendar day of t in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	return Day(t.In(locationOrLocal(loc)).Format(dayLayout))
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("parse day %q: %w", s, err)
	}
	return Day(t.Format(dayLayout)), nil
}

func (d Day) String() string {
	return string(d)
}

func (d Day) IsZero() bool {
	return d == ""
}

// AddDays shifts the key by n calendar days. The arithmetic is done on the
// civil date so it is unaffected by DST transitions.
func (d Day) AddDays(n int) (Day, error) {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return "", fmt.Errorf("shift day %q: %w", d, err)
	}
	shifted := t.AddDate(0, 0, n)
	if err := checkYear(shifted); err != nil {
		return "", fmt.Errorf("shift day %q by %d: %w", d, n, err)
	}
	return Day(shifted.Format(dayLayout)), nil
}

// Start returns midnight of the day in loc.
func (d Day) Start(loc *time.Location) time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, locationOrLocal(loc))
}

// End returns the last instant of the day in loc.
func (d Day) End(loc *time.Location) time.Time {
	start := d.Start(loc)
	if start.IsZero() {
		return time.Time{}
	}
	next := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, start.Location())
	return next.Add(-time.Nanosecond)
}

// DayRange returns every calendar day from start's day through end's day,
// inclusive and ascending. It returns nil when end falls before start.
func DayRange(start, end time.Time, loc *time.Location) []Day {
	loc = locationOrLocal(loc)
	first := civilDate(start.In(loc))
	last := civilDate(end.In(loc))
	if last.Before(first) {
		return nil
	}

	days := make([]Day, 0, 8)
	for d := first; !d.After(last); d = time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, time.UTC) {
		days = append(days, Day(d.Format(dayLayout)))
	}
	return days
}

// civilDate drops the clock and zone of t, keeping its wall-clock date.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
