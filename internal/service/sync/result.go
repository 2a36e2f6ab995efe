package sync

import (
	"time"

	"github.com/heartmarshall/wildlings-backend/internal/domain"
)

// CodeValidationError is the rejection code for an upsert whose interval
// is inverted (end_at < start_at).
const CodeValidationError = "VALIDATION_ERROR"

// RejectedOp reports why one operation was refused.
type RejectedOp struct {
	OpID    string
	Code    string
	Message string
}

// AppliedLog reports the authoritative timestamps a record carries after
// an operation was applied to it.
type AppliedLog struct {
	ID              string
	UpdatedAtServer time.Time
	DeletedAtServer *time.Time
}

// PushResult is the outcome of one push call.
//
// AckOpIDs lists every processed op id, including idempotent replays.
// A non-empty Rejected means the whole batch was refused and Applied is
// empty: one bad operation blocks its siblings, and the client resubmits
// the batch after fixing or dropping it.
type PushResult struct {
	ServerTime time.Time
	AckOpIDs   []string
	Rejected   []RejectedOp
	Applied    []AppliedLog
	NextCursor string
}

// PullResult is one page of the log change feed.
// Logs includes tombstoned records; deletions are data, not omissions.
type PullResult struct {
	ServerTime time.Time
	NextCursor string
	Logs       []*domain.LogRecord
}
