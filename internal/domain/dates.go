package domain

import "time"

// DateLayout is the wire format of calendar-day fields.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a calendar day. Full RFC3339 timestamps are accepted and
// truncated to their date.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return StartOfDay(t.In(time.Local)), true
	}
	return time.Time{}, false
}

// StartOfDay returns local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// DaysBetween returns the whole days from a to b, ignoring time of day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(time.Local).Date()
	by, bm, bd := b.In(time.Local).Date()
	start := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
