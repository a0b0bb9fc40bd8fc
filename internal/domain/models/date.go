package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ISODateLayout is the in-memory calendar day format.
const ISODateLayout = "2006-01-02"

// Date is a calendar day carried by an animal record. Raw keeps the text the
// server returned so that malformed values survive a replace-style update; a
// zero Time marks the value as invalid.
type Date struct {
	Time time.Time
	Raw  string
}

// Valid reports whether the day could be parsed.
func (d Date) Valid() bool { return !d.Time.IsZero() }

// IsZero reports whether the field is absent altogether.
func (d Date) IsZero() bool { return d.Raw == "" && d.Time.IsZero() }

// ISO returns the YYYY-MM-DD form, or "" for invalid dates.
func (d Date) ISO() string {
	if !d.Valid() {
		return ""
	}
	return d.Time.Format(ISODateLayout)
}

// MarshalJSON renders valid dates as YYYY-MM-DD and falls back to the raw text.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Valid() {
		return json.Marshal(d.ISO())
	}
	return json.Marshal(d.Raw)
}

// UnmarshalJSON accepts "", YYYY-MM-DD and DD/MM/YYYY strings. Any other
// value is kept in Raw with a zero Time; it never fails.
func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date{}

	var s string
	if err := json.Unmarshal(bytes.TrimSpace(b), &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range []string{ISODateLayout, "2/1/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{Time: t, Raw: s}
			return nil
		}
	}
	d.Raw = s
	return nil
}

// DateOf builds a valid Date for t truncated to the calendar day.
func DateOf(t time.Time) Date {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Date{Time: day, Raw: day.Format(ISODateLayout)}
}
