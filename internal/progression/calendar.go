package progression

import (
	"time"

	"habitQuestAPI/internal/habit"
)

// Calendar math over bare dates and a cadence. Week numbering follows
// ISO-8601: weeks start on Monday and week 1 of a year is the week
// containing the year's first Thursday, which is exactly what
// time.Time.ISOWeek implements.

// SamePeriod reports whether a and b fall in the same completion period.
// DAILY: the same calendar date. WEEKLY: the same ISO week of the same
// week-based year.
func SamePeriod(cadence habit.Cadence, a, b time.Time) bool {
	a, b = DateOf(a), DateOf(b)
	if cadence == habit.CadenceWeekly {
		ay, aw := a.ISOWeek()
		by, bw := b.ISOWeek()
		return ay == by && aw == bw
	}
	return a.Equal(b)
}

// IsConsecutivePeriod reports whether current is in the period
// immediately following previous. DAILY: the next calendar day.
// WEEKLY: the next ISO week, where week 1 of year Y+1 follows week 52
// or 53 of year Y (covers both 52- and 53-week years without needing
// the per-year week count).
func IsConsecutivePeriod(cadence habit.Cadence, previous, current time.Time) bool {
	previous, current = DateOf(previous), DateOf(current)
	if cadence == habit.CadenceWeekly {
		py, pw := previous.ISOWeek()
		cy, cw := current.ISOWeek()
		if py == cy {
			return cw == pw+1
		}
		if cy == py+1 && cw == 1 {
			return pw >= 52
		}
		return false
	}
	return previous.AddDate(0, 0, 1).Equal(current)
}

// StartOfWeek returns the most recent Monday on or before date.
func StartOfWeek(date time.Time) time.Time {
	date = DateOf(date)
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}
