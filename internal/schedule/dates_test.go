package schedule

import (
	"testing"
	"time"
)

func TestDatesForMonthLength(t *testing.T) {
	testCases := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{name: "january", year: 2026, month: time.January, want: 31},
		{name: "february non-leap", year: 2026, month: time.February, want: 28},
		{name: "february leap", year: 2024, month: time.February, want: 29},
		{name: "february century non-leap", year: 1900, month: time.February, want: 28},
		{name: "february 400 leap", year: 2000, month: time.February, want: 29},
		{name: "april", year: 2026, month: time.April, want: 30},
		{name: "december", year: 2026, month: time.December, want: 31},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ref := time.Date(tc.year, tc.month, 15, 13, 45, 0, 0, time.UTC)
			dates := DatesForMonth(ref)
			if len(dates) != tc.want {
				t.Fatalf("DatesForMonth() returned %d days, want %d", len(dates), tc.want)
			}
			if dates[0].Day() != 1 {
				t.Errorf("first day = %d, want 1", dates[0].Day())
			}
			for i := 1; i < len(dates); i++ {
				if got := dates[i-1].AddDate(0, 0, 1); !got.Equal(dates[i]) {
					t.Errorf("day %d = %v, want %v", i, dates[i], got)
				}
				if dates[i].Month() != tc.month {
					t.Errorf("day %d left the month: %v", i, dates[i])
				}
			}
		})
	}
}

func TestDatesForMonthAllMonths(t *testing.T) {
	for year := 2023; year <= 2025; year++ {
		for month := time.January; month <= time.December; month++ {
			dates := DatesForMonth(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
			if len(dates) < 28 || len(dates) > 31 {
				t.Fatalf("%d-%02d: got %d days", year, month, len(dates))
			}
			last := dates[len(dates)-1]
			if next := last.AddDate(0, 0, 1); next.Month() == month {
				t.Errorf("%d-%02d: last day %v is not the end of the month", year, month, last)
			}
		}
	}
}

func TestDatesForMonthKeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	dates := DatesForMonth(time.Date(2026, time.March, 20, 9, 0, 0, 0, loc))
	for _, d := range dates {
		if d.Location() != loc {
			t.Fatalf("date %v has location %v, want %v", d, d.Location(), loc)
		}
		if d.Hour() != 0 || d.Minute() != 0 {
			t.Fatalf("date %v is not midnight", d)
		}
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	if !SameDay(a, time.Date(2026, time.October, 18, 23, 59, 0, 0, time.UTC)) {
		t.Error("expected same calendar day regardless of time of day")
	}
	if SameDay(a, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected different days")
	}
	if SameDay(a, time.Date(2025, time.October, 18, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected different years to differ")
	}
}

func TestFirstOfMonthAndAddDays(t *testing.T) {
	ref := time.Date(2024, time.February, 29, 18, 0, 0, 0, time.UTC)
	if got := FirstOfMonth(ref); got.Day() != 1 || got.Month() != time.February || got.Hour() != 0 {
		t.Errorf("FirstOfMonth() = %v", got)
	}
	if got := AddDays(ref, 1); got.Month() != time.March || got.Day() != 1 {
		t.Errorf("AddDays(+1) = %v, want March 1", got)
	}
}
