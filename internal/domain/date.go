package domain

import "time"

// DateLayout is the only date format accepted or produced at the boundary.
const DateLayout = "2006-01-02"

const dayMillis = 24 * 60 * 60 * 1000

// ParseCalendarDate interprets s as a date-only value at UTC midnight.
// The second return value is false when s is empty or not a valid calendar
// date; callers treat that as "invalid date" and never as a failure.
func ParseCalendarDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatCalendarDate renders t's calendar date in DateLayout.
func FormatCalendarDate(t time.Time) string {
	return CalendarDay(t).Format(DateLayout)
}

// CalendarDay normalizes t to UTC midnight of the calendar date it shows in
// its own location, so a local 23:30 does not slide into the next UTC day.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetweenInclusive returns the number of whole days from a to b after both
// are normalized to calendar days, clamped at zero. Callers add one when both
// the first and the last day count as present.
func DaysBetweenInclusive(a, b time.Time) int {
	diff := CalendarDay(b).UnixMilli() - CalendarDay(a).UnixMilli()
	if diff <= 0 {
		return 0
	}
	return int(diff / dayMillis)
}

// StayDuration is the inclusive day count of a visit: entry and exit day both count.
func StayDuration(entry, exit time.Time) int {
	return DaysBetweenInclusive(entry, exit) + 1
}

// AddDays shifts a calendar day by n days.
func AddDays(t time.Time, n int) time.Time {
	return CalendarDay(t).AddDate(0, 0, n)
}
