package services

import "time"

// dateOnly truncates t to its calendar date (UTC). Document and
// invoice dates are stored date-only.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOrToday(t time.Time) time.Time {
	if t.IsZero() {
		return dateOnly(time.Now())
	}
	return dateOnly(t)
}
