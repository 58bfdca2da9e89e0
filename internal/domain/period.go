package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SampleStepDays is the spacing between requested days.
const SampleStepDays = 10

// DateLayout is the date format used in requests and file names.
const DateLayout = "2006-01-02"

// PeriodLen is the length of a period label such as "2021-03".
const PeriodLen = 7

var (
	ErrInvalidMonthRange = errors.New("invalid month range")
	ErrInvalidPeriod     = errors.New("invalid period label")
)

// SampleDates returns every 10th day of the inclusive sequence running from
// the first day of monthStart through the first day of the month after
// monthEnd. A monthEnd of 12 runs into January 1st of the next year.
func SampleDates(year, monthStart, monthEnd int) ([]time.Time, error) {
	if monthStart < 1 || monthStart > 12 || monthEnd < 1 || monthEnd > 12 {
		return nil, fmt.Errorf("%w: months must be in 1..12, got %d..%d", ErrInvalidMonthRange, monthStart, monthEnd)
	}
	if monthStart > monthEnd {
		return nil, fmt.Errorf("%w: start month %d is after end month %d", ErrInvalidMonthRange, monthStart, monthEnd)
	}

	start := time.Date(year, time.Month(monthStart), 1, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes month 13 to January of the following year.
	end := time.Date(year, time.Month(monthEnd+1), 1, 0, 0, 0, 0, time.UTC)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, SampleStepDays) {
		dates = append(dates, d)
	}
	return dates, nil
}

// Period is a validated file-name prefix selecting one time window.
type Period string

// ParsePeriod validates a period label. Labels are exactly seven
// characters, typically "YYYY-MM", and may not contain path separators.
func ParsePeriod(label string) (Period, error) {
	if len(label) != PeriodLen {
		return "", fmt.Errorf("%w: %q must be %d characters", ErrInvalidPeriod, label, PeriodLen)
	}
	if strings.ContainsAny(label, `/\`) {
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidPeriod, label)
	}
	return Period(label), nil
}

// Matches reports whether a file name belongs to the period.
func (p Period) Matches(name string) bool {
	return len(name) >= PeriodLen && name[:PeriodLen] == string(p)
}

func (p Period) String() string { return string(p) }
