package model

import (
	"time"
)

// TimeLayout is the canonical format for every date crossing the backend
// boundary. It is RFC 3339 with a fixed nine-digit fraction, so stored values
// sort as text in time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime serializes t as ISO-8601 in UTC. The zero time becomes "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// FormatTimePtr is FormatTime for optional dates; nil stays nil.
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// ParseTime parses an ISO-8601 string. Both full RFC 3339 timestamps and
// plain YYYY-MM-DD dates are accepted.
func ParseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.DateOnly, value)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, NewValidationError(field, "must be an ISO-8601 date")
}

// ParseTimeOrZero returns the zero time sentinel for an unparsable value.
func ParseTimeOrZero(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := ParseTime("", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
