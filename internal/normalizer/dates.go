package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/dfarm/internal/domain/models"
)

const (
	// PersistedDateLayout is the day-first format animal dates are stored in.
	PersistedDateLayout = "02/01/2006"
	// DisplayDateLayout is the label format used for list and detail views.
	DisplayDateLayout = "Jan 02, 2006"
	// InvalidDateLabel replaces dates that cannot be parsed.
	InvalidDateLabel = "Invalid date"

	longDateLayout = "January 2, 2006"
	postTimeLayout = "2006-01-02T15:04:05"
)

// ParsePersistedDate reads a DD/MM/YYYY date. The parts are reassembled as
// YYYY-MM-DD before parsing, so only day-first input is accepted; anything
// else reports ok=false and the zero time.
func ParsePersistedDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, errDay := strconv.Atoi(parts[0])
	month, errMonth := strconv.Atoi(parts[1])
	year, errYear := strconv.Atoi(parts[2])
	if errDay != nil || errMonth != nil || errYear != nil || year < 1 || year > 9999 {
		return time.Time{}, false
	}

	iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	t, err := time.Parse(models.ISODateLayout, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatPersistedDate renders s as DD/MM/YYYY. It accepts day-first dates
// (re-padding them), ISO dates and RFC 3339 timestamps. Input it cannot read
// is returned unchanged.
func FormatPersistedDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	if strings.Contains(trimmed, "/") {
		if t, ok := ParsePersistedDate(trimmed); ok {
			return t.Format(PersistedDateLayout)
		}
		return s
	}

	if t, ok := parseISO(trimmed); ok {
		return t.Format(PersistedDateLayout)
	}
	return s
}

// FormatDate renders an animal date for persistence. Dates that never parsed
// are written back as they were read.
func FormatDate(d models.Date) string {
	if d.Valid() {
		return d.Time.Format(PersistedDateLayout)
	}
	return FormatPersistedDate(d.Raw)
}

// PersistedDate wraps a stored DD/MM/YYYY value. Unparseable text keeps its
// raw form with a zero Time.
func PersistedDate(s string) models.Date {
	t, _ := ParsePersistedDate(s)
	return models.Date{Time: t, Raw: s}
}

// InputDate reads a date supplied by an API client: DD/MM/YYYY, YYYY-MM-DD
// or an RFC 3339 timestamp.
func InputDate(s string) models.Date {
	trimmed := strings.TrimSpace(s)
	if t, ok := ParsePersistedDate(trimmed); ok {
		return models.Date{Time: t, Raw: t.Format(PersistedDateLayout)}
	}
	if t, ok := parseISO(trimmed); ok {
		return models.Date{Time: t, Raw: t.Format(PersistedDateLayout)}
	}
	return models.Date{Raw: s}
}

// DisplayDate renders s as "Jan 02, 2006". Empty input yields emptyLabel and
// unreadable input yields InvalidDateLabel.
func DisplayDate(s, emptyLabel string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return emptyLabel
	}
	if t, ok := ParsePersistedDate(trimmed); ok {
		return t.Format(DisplayDateLayout)
	}
	if t, ok := parseISO(trimmed); ok {
		return t.Format(DisplayDateLayout)
	}
	return InvalidDateLabel
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range []string{models.ISODateLayout, time.RFC3339, postTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseExpenseDate reads the long textual form first, then ISO.
func parseExpenseDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(longDateLayout, trimmed); err == nil {
		return t, true
	}
	if t, err := time.Parse(models.ISODateLayout, trimmed); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parsePostTime(s string) time.Time {
	t, err := time.Parse(postTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
