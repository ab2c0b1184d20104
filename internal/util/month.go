package util

import "time"

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth returns the year and month for the following month
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// IsSameMonth returns true if t falls in the given year/month
func IsSameMonth(year, month int, t time.Time) bool {
	return t.Year() == year && int(t.Month()) == month
}

// FormatShortDate renders a YYYY-MM-DD date as "Jan 2, 2006". Unparseable dates
// are returned unchanged.
func FormatShortDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}
