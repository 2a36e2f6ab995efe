package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/wildlings-backend/pkg/timeutil"
)

// Pull returns one page of log changes strictly after the given cursor,
// ordered by (updated_at_server, id), tombstones included.
//
// Pull never mutates anything: the same cursor against an unchanged store
// yields the same page, so clients can safely retry on timeout. When the
// page is empty, the input cursor is echoed back unchanged; a first-time
// caller with no data instead gets a cursor anchored at "now", so a later
// pull only returns genuinely new records.
func (s *Service) Pull(ctx context.Context, rawCursor string) (*PullResult, error) {
	serverTime := timeutil.EnsureUTC(s.clock.Now())

	cur, err := ParseCursor(rawCursor)
	if err != nil {
		return nil, err
	}

	recs, err := s.logs.ListChanges(ctx, cur.UpdatedAt, cur.ID, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}

	nextCursor := rawCursor
	if len(recs) > 0 {
		last := recs[len(recs)-1]
		nextCursor = Cursor{UpdatedAt: last.UpdatedAtServer, ID: last.ID}.String()
	} else if rawCursor == "" {
		nextCursor = Cursor{UpdatedAt: serverTime}.String()
	}

	s.log.DebugContext(ctx, "pull page served",
		slog.Int("records", len(recs)),
		slog.String("next_cursor", nextCursor),
	)

	return &PullResult{
		ServerTime: serverTime,
		NextCursor: nextCursor,
		Logs:       recs,
	}, nil
}
