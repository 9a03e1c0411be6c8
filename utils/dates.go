package utils

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the only date format the API accepts or produces.
const DateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a YYYY-MM-DD string into a UTC-midnight time.Time.
// All calendar arithmetic runs on these values; UTC has no DST, so adding
// days can never produce an off-by-one around a clock change.
func ParseDate(s string) (time.Time, error) {
	if !dateRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a date by n calendar days (n may be negative).
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	offset := 1 - int(t.Weekday())
	if t.Weekday() == time.Sunday {
		offset = -6
	}
	return FormatDate(t.AddDate(0, 0, offset)), nil
}

// WeekEnd returns the Sunday of the week containing date.
func WeekEnd(date string) (string, error) {
	ws, err := WeekStart(date)
	if err != nil {
		return "", err
	}
	return AddDays(ws, 6)
}

// QuarterEnd returns the last day of a 12-week quarter beginning at start
// (start + 83 days).
func QuarterEnd(start string) (string, error) {
	return AddDays(start, 83)
}

// DaysBetween returns the whole-day difference end - start. Negative when
// end precedes start. Computed on Unix seconds: both values sit at UTC
// midnight so the division is exact, and it cannot overflow the way a
// nanosecond time.Duration does on multi-century spans.
func DaysBetween(start, end string) (int, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return 0, err
	}
	return int((e.Unix() - s.Unix()) / 86400), nil
}

// DatesBetween enumerates every day in [start, end] ascending.
func DatesBetween(start, end string) ([]string, error) {
	diff, err := DaysBetween(start, end)
	if err != nil {
		return nil, err
	}
	if diff < 0 {
		return nil, fmt.Errorf("end date %s precedes start date %s", end, start)
	}
	t, _ := ParseDate(start)
	dates := make([]string, 0, diff+1)
	for i := 0; i <= diff; i++ {
		dates = append(dates, FormatDate(t.AddDate(0, 0, i)))
	}
	return dates, nil
}
