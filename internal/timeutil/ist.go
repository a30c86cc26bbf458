package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60) // UTC+5:30
	}
}

// Common layouts for IST formatting
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006"
)

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// Today returns the current IST calendar day at midnight
func Today() time.Time {
	return DateOnly(time.Now())
}

// DateOnly truncates t to its IST calendar day. Every date comparison made by
// the statement engine goes through here so time-of-day never leaks in.
func DateOnly(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}

// ParseDate parses a YYYY-MM-DD string as an IST calendar day
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.ParseInLocation(DateLayout, value, IST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD in IST
func FormatDate(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// SameDay reports whether a and b fall on the same IST calendar day
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
