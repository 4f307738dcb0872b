package util

import "time"

// Direction selects which way a weekend date is moved
type Direction int

const (
	// Forward moves a weekend date to the following Monday
	Forward Direction = iota
	// Backward moves a weekend date to the preceding Friday
	Backward
)

// ResolveBusinessDay returns the nearest weekday in the given direction.
// Only weekends are considered; there is no holiday calendar.
func ResolveBusinessDay(date time.Time, dir Direction) time.Time {
	switch date.Weekday() {
	case time.Saturday:
		if dir == Forward {
			return date.AddDate(0, 0, 2)
		}
		return date.AddDate(0, 0, -1)
	case time.Sunday:
		if dir == Forward {
			return date.AddDate(0, 0, 1)
		}
		return date.AddDate(0, 0, -2)
	}
	return date
}

// IsWeekend reports whether date falls on Saturday or Sunday
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
