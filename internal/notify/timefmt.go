package notify

import (
	"fmt"
	"time"
)

// InvalidDate is returned by Format for timestamps it cannot render.
const InvalidDate = "Invalid date"

// LongLayout is the fixed long date/time style used in every notification.
// Example: Sunday, 25 October 2026 at 8:00 AM IST.
const LongLayout = "Monday, 2 January 2006 at 3:04 PM MST"

// TimeFormatter renders epoch timestamps in a fixed timezone.
type TimeFormatter struct {
	loc *time.Location
}

// NewTimeFormatter loads tz and returns a formatter for it.
func NewTimeFormatter(tz string) (*TimeFormatter, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &TimeFormatter{loc: loc}, nil
}

// NewTimeFormatterIn wraps an already loaded location.
func NewTimeFormatterIn(loc *time.Location) *TimeFormatter {
	return &TimeFormatter{loc: loc}
}

// Format renders epochSeconds with LongLayout. Non-positive timestamps and an
// unusable formatter yield InvalidDate.
func (f *TimeFormatter) Format(epochSeconds int64) string {
	if f == nil || f.loc == nil || epochSeconds <= 0 {
		return InvalidDate
	}
	return time.Unix(epochSeconds, 0).In(f.loc).Format(LongLayout)
}

// Location returns the formatter's timezone.
func (f *TimeFormatter) Location() *time.Location {
	if f == nil || f.loc == nil {
		return time.UTC
	}
	return f.loc
}
