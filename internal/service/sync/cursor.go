package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/heartmarshall/wildlings-backend/internal/domain"
	"github.com/heartmarshall/wildlings-backend/pkg/timeutil"
)

// Cursor is a resumption point in the log change feed: the
// (updated_at_server, id) pair of the last record a client has seen.
// The id component breaks ties between records sharing a timestamp,
// which happens whenever one push writes several records.
//
// The wire form is "<ISO-8601 UTC timestamp>|<record id>"; the id part may
// be empty when only a time boundary is known (e.g. the "now" cursor handed
// to first-time callers with no data).
type Cursor struct {
	UpdatedAt time.Time
	ID        string
}

// ParseCursor decodes the wire form. An empty input yields the zero Cursor,
// meaning "from the beginning". A cursor without the "|" separator is
// treated as a bare time boundary. A malformed timestamp is reported as
// domain.ErrMalformedCursor.
func ParseCursor(raw string) (Cursor, error) {
	if raw == "" {
		return Cursor{}, nil
	}

	rawTime, id, _ := strings.Cut(raw, "|")

	ts, err := timeutil.ParseISO(rawTime)
	if err != nil {
		return Cursor{}, fmt.Errorf("cursor %q: %w", raw, domain.ErrMalformedCursor)
	}

	return Cursor{UpdatedAt: ts, ID: id}, nil
}

// String encodes the cursor in its wire form.
func (c Cursor) String() string {
	return timeutil.FormatISO(c.UpdatedAt) + "|" + c.ID
}

// IsZero reports whether the cursor is unset.
func (c Cursor) IsZero() bool {
	return c.UpdatedAt.IsZero() && c.ID == ""
}
