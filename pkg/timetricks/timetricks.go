// Package timetricks has calendar helpers for wall-clock times. All comparisons are in
// the location the times already carry; nothing here converts zones.
package timetricks

import (
	"time"
)

const dayFormat = "2006-01-02"

// SameDay reports whether t and t2 fall on the same calendar day of their own wall
// clocks.
func SameDay(t time.Time, t2 time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Day truncates t to midnight of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SetClock returns t's calendar day at hour:minute.
func SetClock(t time.Time, hour, minute int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}

// WallClock reinterprets t's wall clock fields in loc.
func WallClock(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	h, min, s := t.Clock()
	return time.Date(y, m, d, h, min, s, t.Nanosecond(), loc)
}

// DayKey returns a string representation of t that is unique by the day. Two times on
// the same calendar day return identical strings.
func DayKey(t time.Time) string {
	return t.Format(dayFormat)
}
