package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// MonthKey is a YYYY-MM grouping key derived from an expense date. Months are
// never persisted; they partition expenses.
type MonthKey string

// Direction selects which way the month window moves
type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

const monthKeyLayout = "2006-01"

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ParseMonthKey validates the YYYY-MM shape of s. Neither the year nor the month
// is range checked; an out-of-range month rolls over like a calendar date would.
func ParseMonthKey(s string) (MonthKey, error) {
	if !monthKeyPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return MonthKey(s), nil
}

// MonthKeyOf truncates a YYYY-MM-DD date to its month key
func MonthKeyOf(date string) MonthKey {
	if len(date) < len(monthKeyLayout) {
		return MonthKey(date)
	}
	return MonthKey(date[:len(monthKeyLayout)])
}

// MonthKeyFromTime returns the month key containing t
func MonthKeyFromTime(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// Time returns the first day of the month at midnight UTC. Months outside 01-12
// are normalized, so "2024-13" is January 2025.
func (m MonthKey) Time() (time.Time, error) {
	year, month, err := m.YearMonth()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// YearMonth splits the key into its numeric parts as written
func (m MonthKey) YearMonth() (int, int, error) {
	s := string(m)
	if !monthKeyPattern.MatchString(s) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	year, _ := strconv.Atoi(s[:4])
	month, _ := strconv.Atoi(s[5:])
	return year, month, nil
}

// Contains reports whether a YYYY-MM-DD date falls in the month
func (m MonthKey) Contains(date string) bool {
	return MonthKeyOf(date) == m
}

// Label returns the human-readable month name, e.g. "February 2024"
func (m MonthKey) Label() string {
	t, err := m.Time()
	if err != nil {
		return string(m)
	}
	return t.Format("January 2006")
}

func (m MonthKey) String() string {
	return string(m)
}
