package domain

import (
	"time"
)

// LogRecord is one tracked time interval, synchronized across devices.
//
// IDs are client-assigned and globally unique. UpdatedAtServer is assigned
// exclusively by the server clock on every accepted mutation; client-supplied
// timestamps are advisory only. Records are never physically deleted:
// a non-nil DeletedAtServer marks the record as a tombstone so that pulling
// clients can observe the deletion. A later upsert revives the record and
// clears the tombstone.
type LogRecord struct {
	ID              string
	StartAt         time.Time
	EndAt           *time.Time
	Note            *string
	UpdatedAtServer time.Time
	DeletedAtServer *time.Time
}

// Deleted reports whether the record is tombstoned.
func (r *LogRecord) Deleted() bool {
	return r.DeletedAtServer != nil
}

// ValidateInterval checks that endAt, when present, does not precede startAt.
// Returns a human-readable message suitable for a per-operation rejection,
// or "" when the interval is valid.
func ValidateInterval(startAt time.Time, endAt *time.Time) string {
	if endAt == nil {
		return ""
	}
	if endAt.Before(startAt) {
		return "end_at must be >= start_at"
	}
	return ""
}
