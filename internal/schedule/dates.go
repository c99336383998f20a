package schedule

import "time"

// DatesForMonth returns every day of ref's month, from the 1st to the last day,
// at midnight in ref's location.
func DatesForMonth(ref time.Time) []time.Time {
	year, month, _ := ref.Date()
	loc := ref.Location()

	n := DaysIn(year, month, loc)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = time.Date(year, month, i+1, 0, 0, 0, 0, loc)
	}
	return dates
}

// DaysIn reports the length of a month. Day 0 of the following month
// normalises to the last day of this one.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// SameDay reports whether a and b fall on the same calendar day.
// b is compared in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// FirstOfMonth returns midnight on day 1 of t's month.
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping the wall clock across DST changes.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
