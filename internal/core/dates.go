package core

import (
	"fmt"
	"os"
	"time"
)

// Eprint writes msg to stderr when verbose is true.
func Eprint(msg string, verbose bool) {
	if verbose {
		fmt.Fprintln(os.Stderr, msg)
	}
}

// ProgressPrint writes msg to stderr unless quiet is true.
func ProgressPrint(msg string, quiet bool) {
	if !quiet {
		fmt.Fprintln(os.Stderr, msg)
	}
}

// ParseDate parses a YYYY-MM-DD string into a time.Time (date only, at midnight UTC).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFmt, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// FormatDate formats a time.Time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateFmt)
}

// DateOnly returns a time.Time with only the date portion (midnight UTC).
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the clock's current calendar date at midnight UTC.
func Today(clock Clock) time.Time {
	return DateOnly(clock.Now())
}

// MonthRange returns the first and last calendar dates of a 1-indexed month.
func MonthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month out of range (1-12): %d", month)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}

// WeekRange returns the inclusive 7-day window starting at startDate.
func WeekRange(startDate time.Time) (time.Time, time.Time) {
	start := DateOnly(startDate)
	return start, start.AddDate(0, 0, 6)
}

// WeekStart returns the Monday on or before the given date. Summaries and
// insights are keyed by this date.
func WeekStart(t time.Time) time.Time {
	d := DateOnly(t)
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return d.AddDate(0, 0, -(weekday - 1))
}
