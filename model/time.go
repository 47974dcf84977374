package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for imagery date filters
const DateLayout = "2006-01-02"

// Clients send dates either as bare calendar days (from the UI date pickers)
// or as full RFC 3339 timestamps, so parsing is lenient about both.

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate is a drop-in replacement for time.Parse matching against the
// accepted date formats
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if output, err := time.Parse(layout, value); err == nil {
			return output, nil
		}
	}
	return time.Time{}, fmt.Errorf("date could not be parsed by any expected format: `%s`", value)
}

// DateRange is an inclusive acquisition date interval for imagery queries
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses and validates a date range; the start date must not be
// after the end date
func NewDateRange(start, end string) (DateRange, error) {
	var (
		dr  DateRange
		err error
	)
	if dr.Start, err = ParseDate(start); err != nil {
		return dr, err
	}
	if dr.End, err = ParseDate(end); err != nil {
		return dr, err
	}
	if dr.Start.After(dr.End) {
		return dr, fmt.Errorf("start date %v is after end date %v", start, end)
	}
	return dr, nil
}

// DefaultDateRange returns the last 30 days ending at the given time
func DefaultDateRange(now time.Time) DateRange {
	return DateRange{Start: now.AddDate(0, 0, -30), End: now}
}

// StartString returns the start date as a calendar day
func (dr DateRange) StartString() string {
	return dr.Start.Format(DateLayout)
}

// EndString returns the end date as a calendar day
func (dr DateRange) EndString() string {
	return dr.End.Format(DateLayout)
}
