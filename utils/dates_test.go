package utils

import (
	"testing"
)

func TestWeekStart_AlignsToMonday(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2026-01-05", "2026-01-05"}, // Monday maps to itself
		{"2026-01-07", "2026-01-05"}, // Wednesday
		{"2026-01-10", "2026-01-05"}, // Saturday
		{"2026-01-11", "2026-01-05"}, // Sunday belongs to the preceding Monday
		{"2026-01-12", "2026-01-12"}, // next Monday
	}

	for _, tc := range cases {
		got, err := WeekStart(tc.date)
		if err != nil {
			t.Fatalf("WeekStart(%s) failed: %v", tc.date, err)
		}
		if got != tc.want {
			t.Errorf("WeekStart(%s) = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestWeekEnd(t *testing.T) {
	got, err := WeekEnd("2026-01-07")
	if err != nil {
		t.Fatalf("WeekEnd failed: %v", err)
	}
	if got != "2026-01-11" {
		t.Errorf("WeekEnd(2026-01-07) = %s, want 2026-01-11", got)
	}
}

func TestQuarterEnd_Is83DaysOut(t *testing.T) {
	got, err := QuarterEnd("2026-01-05")
	if err != nil {
		t.Fatalf("QuarterEnd failed: %v", err)
	}
	if got != "2026-03-29" {
		t.Errorf("QuarterEnd(2026-01-05) = %s, want 2026-03-29", got)
	}
}

func TestAddDays_CrossesMonthAndYearBoundaries(t *testing.T) {
	got, err := AddDays("2025-12-29", 7)
	if err != nil {
		t.Fatalf("AddDays failed: %v", err)
	}
	if got != "2026-01-05" {
		t.Errorf("AddDays(2025-12-29, 7) = %s, want 2026-01-05", got)
	}

	got, err = AddDays("2026-03-01", -7)
	if err != nil {
		t.Fatalf("AddDays failed: %v", err)
	}
	if got != "2026-02-22" {
		t.Errorf("AddDays(2026-03-01, -7) = %s, want 2026-02-22", got)
	}
}

func TestAddDays_StableAcrossDSTTransition(t *testing.T) {
	// 2026-03-08 is a US DST switch day; date-only arithmetic must not care.
	got, err := AddDays("2026-03-07", 1)
	if err != nil {
		t.Fatalf("AddDays failed: %v", err)
	}
	if got != "2026-03-08" {
		t.Errorf("AddDays(2026-03-07, 1) = %s, want 2026-03-08", got)
	}
	got, err = AddDays("2026-03-07", 2)
	if err != nil {
		t.Fatalf("AddDays failed: %v", err)
	}
	if got != "2026-03-09" {
		t.Errorf("AddDays(2026-03-07, 2) = %s, want 2026-03-09", got)
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"2026-01-05", "2026-01-11", 6},
		{"2026-01-05", "2026-01-05", 0},
		{"2026-01-11", "2026-01-05", -6},
	}
	for _, tc := range cases {
		got, err := DaysBetween(tc.start, tc.end)
		if err != nil {
			t.Fatalf("DaysBetween(%s, %s) failed: %v", tc.start, tc.end, err)
		}
		if got != tc.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}

// Multi-millennium spans exceed what a nanosecond duration can hold; the
// day count must survive any pair of format-valid dates.
func TestDaysBetween_ExtremeSpans(t *testing.T) {
	got, err := DaysBetween("0001-01-01", "9999-12-31")
	if err != nil {
		t.Fatalf("DaysBetween failed: %v", err)
	}
	if got != 3652058 {
		t.Errorf("DaysBetween(0001-01-01, 9999-12-31) = %d, want 3652058", got)
	}

	rev, err := DaysBetween("9999-12-31", "0001-01-01")
	if err != nil {
		t.Fatalf("DaysBetween failed: %v", err)
	}
	if rev != -3652058 {
		t.Errorf("reversed span = %d, want -3652058", rev)
	}
}

func TestDatesBetween_EnumeratesInclusive(t *testing.T) {
	dates, err := DatesBetween("2026-01-30", "2026-02-02")
	if err != nil {
		t.Fatalf("DatesBetween failed: %v", err)
	}
	want := []string{"2026-01-30", "2026-01-31", "2026-02-01", "2026-02-02"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestDatesBetween_RejectsReversedRange(t *testing.T) {
	if _, err := DatesBetween("2026-01-05", "2026-01-01"); err == nil {
		t.Error("expected error for reversed range")
	}
}

func TestParseDate_RejectsBadFormats(t *testing.T) {
	for _, s := range []string{"2026-1-5", "05-01-2026", "2026/01/05", "tomorrow", "2026-13-01", ""} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) accepted invalid input", s)
		}
	}
}
