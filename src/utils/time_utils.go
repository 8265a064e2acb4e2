package utils

import "time"

const dateKeyLayout = "2006-01-02"

// DateKey renders a time as the local calendar-date string used to key the
// daily spend ledger.
func DateKey(t time.Time) string {
	return t.Local().Format(dateKeyLayout)
}

// DateKeyBefore returns the date key for n days before t. Keys compare
// lexicographically in chronological order.
func DateKeyBefore(t time.Time, days int) string {
	return DateKey(t.AddDate(0, 0, -days))
}
