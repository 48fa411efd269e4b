package dashboard

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// ParsePeriod parses a YYYY-MM period and returns its first instant in UTC
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse(periodLayout, period)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: period %q is not YYYY-MM", ErrInvalidInput, period)
	}
	return t.UTC(), nil
}

// PreviousPeriod returns the calendar month before period
func PreviousPeriod(period string) (string, error) {
	t, err := ParsePeriod(period)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, -1, 0).Format(periodLayout), nil
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) string {
	return t.UTC().Format(periodLayout)
}
