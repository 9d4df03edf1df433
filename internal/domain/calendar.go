package domain

import "time"

// weekEpoch is a Monday well before any sample starts.
var weekEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// MonthIndex maps a date to its month number on a continuous axis, twelve
// per year, so month offsets are plain integer arithmetic.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// WeekIndex maps a date to its Monday-based week number on a continuous
// axis, so week offsets are plain integer arithmetic.
func WeekIndex(t time.Time) int {
	days := int(t.Sub(weekEpoch) / (24 * time.Hour))
	return days / 7
}
