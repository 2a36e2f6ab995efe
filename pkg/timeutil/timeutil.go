// Package timeutil normalizes timestamps for the sync protocol.
// All values stored or emitted by the server are UTC; serialized forms
// always carry a literal "Z" suffix, never a numeric offset.
package timeutil

import (
	"fmt"
	"time"
)

// EnsureUTC converts t to UTC, truncated to microsecond precision so values
// round-trip identically through a timestamptz column.
func EnsureUTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// EnsureUTCPtr is EnsureUTC for optional timestamps. Nil stays nil.
func EnsureUTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := EnsureUTC(*t)
	return &u
}

// FormatISO renders t as ISO-8601 UTC with a "Z" suffix.
// Fractional seconds are included only when non-zero.
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatISOPtr is FormatISO for optional timestamps. Nil yields nil.
func FormatISOPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatISO(*t)
	return &s
}

// ParseISO parses an ISO-8601 timestamp (with "Z" or a numeric offset)
// and normalizes it to UTC.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return EnsureUTC(t), nil
}
