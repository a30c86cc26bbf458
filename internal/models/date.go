package models

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"time"

	"mandi-backend/internal/timeutil"
)

// Date is a calendar day. It serialises as YYYY-MM-DD and maps to DATE columns.
type Date struct {
	time.Time
}

// NewDate truncates t to its IST calendar day
func NewDate(t time.Time) Date {
	return Date{Time: timeutil.DateOnly(t)}
}

// ParseDate parses YYYY-MM-DD
func ParseDate(value string) (Date, error) {
	t, err := timeutil.ParseDate(value)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// MustDate is ParseDate for literals known to be valid
func MustDate(value string) Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return timeutil.FormatDate(d.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		d.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a YYYY-MM-DD string")
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner so pgx can read DATE columns into Date
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		// DATE values arrive as midnight UTC; keep the calendar day
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, timeutil.IST)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Before reports whether d is an earlier calendar day than other
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is a later calendar day than other
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Equal reports whether d and other are the same calendar day
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}
