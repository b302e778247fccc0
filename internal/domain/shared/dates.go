package shared

import "time"

// AddYears adds n years to a date. When the resulting date does not exist
// (Feb 29 on a non-leap year) it falls back to Feb 28.
func AddYears(t time.Time, n int) time.Time {
	year := t.Year() + n
	month := t.Month()
	day := t.Day()
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DateOnly truncates a time to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
