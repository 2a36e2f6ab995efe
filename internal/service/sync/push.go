package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/wildlings-backend/internal/domain"
	"github.com/heartmarshall/wildlings-backend/pkg/timeutil"
)

// Push applies a batch of client operations.
//
// Two explicit passes, so the accept/refuse decision is made before any
// mutation is attempted:
//
//  1. Validation pass (read-only): every operation not already in the
//     ledger is checked; any inverted upsert interval becomes a rejection.
//     One rejection refuses the whole batch and nothing is applied.
//  2. Apply pass: runs inside one transaction. Operations already in the
//     ledger are acknowledged and skipped; the rest mutate the log store
//     and append their ledger row. A storage failure rolls the whole
//     transaction back.
//
// The server time is sampled exactly once and stamps every write of the
// call, so all records touched by one batch share a timestamp.
func (s *Service) Push(ctx context.Context, input PushInput) (*PushResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if len(input.Ops) > s.maxOps {
		return nil, domain.NewValidationError("ops", fmt.Sprintf("max %d operations per push", s.maxOps))
	}

	serverTime := timeutil.EnsureUTC(s.clock.Now())

	replayAcks, rejected, err := s.validateBatch(ctx, input)
	if err != nil {
		return nil, err
	}

	if len(rejected) > 0 {
		s.log.InfoContext(ctx, "push batch rejected",
			slog.String("device_id", input.DeviceID),
			slog.Int("ops", len(input.Ops)),
			slog.Int("rejected", len(rejected)),
		)
		return &PushResult{
			ServerTime: serverTime,
			AckOpIDs:   replayAcks,
			Rejected:   rejected,
			Applied:    []AppliedLog{},
			NextCursor: timeutil.FormatISO(serverTime),
		}, nil
	}

	result := &PushResult{
		ServerTime: serverTime,
		AckOpIDs:   []string{},
		Rejected:   []RejectedOp{},
		Applied:    []AppliedLog{},
		NextCursor: timeutil.FormatISO(serverTime),
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, op := range input.Ops {
			applied, err := s.ledger.Exists(txCtx, input.DeviceID, op.OpID)
			if err != nil {
				return fmt.Errorf("check ledger %s/%s: %w", input.DeviceID, op.OpID, err)
			}
			if applied {
				// Replay: acknowledge without re-applying.
				result.AckOpIDs = append(result.AckOpIDs, op.OpID)
				continue
			}

			var outcome AppliedLog
			switch op.Action {
			case domain.SyncActionUpsert:
				outcome, err = s.applyUpsert(txCtx, op, serverTime)
			case domain.SyncActionDelete:
				outcome, err = s.applyDelete(txCtx, op, serverTime)
			}
			if err != nil {
				return err
			}

			err = s.ledger.Record(txCtx, &domain.AppliedOp{
				DeviceID:  input.DeviceID,
				OpID:      op.OpID,
				Entity:    op.Entity,
				Action:    op.Action,
				AppliedAt: serverTime,
			})
			if err != nil {
				return fmt.Errorf("record op %s/%s: %w", input.DeviceID, op.OpID, err)
			}

			result.Applied = append(result.Applied, outcome)
			result.AckOpIDs = append(result.AckOpIDs, op.OpID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "push batch applied",
		slog.String("device_id", input.DeviceID),
		slog.Int("ops", len(input.Ops)),
		slog.Int("applied", len(result.Applied)),
		slog.Time("server_time", serverTime),
	)

	return result, nil
}

// validateBatch is the read-only first pass. It returns the op ids that are
// ledger replays (acknowledged even when the batch is refused) and the
// rejections, if any.
func (s *Service) validateBatch(ctx context.Context, input PushInput) ([]string, []RejectedOp, error) {
	replayAcks := []string{}
	var rejected []RejectedOp

	for _, op := range input.Ops {
		applied, err := s.ledger.Exists(ctx, input.DeviceID, op.OpID)
		if err != nil {
			return nil, nil, fmt.Errorf("check ledger %s/%s: %w", input.DeviceID, op.OpID, err)
		}
		if applied {
			replayAcks = append(replayAcks, op.OpID)
			continue
		}

		if op.Action != domain.SyncActionUpsert {
			continue
		}
		startAt := timeutil.EnsureUTC(op.Upsert.StartAt)
		if msg := domain.ValidateInterval(startAt, timeutil.EnsureUTCPtr(op.Upsert.EndAt)); msg != "" {
			rejected = append(rejected, RejectedOp{
				OpID:    op.OpID,
				Code:    CodeValidationError,
				Message: msg,
			})
		}
	}

	return replayAcks, rejected, nil
}

// applyUpsert overwrites the record's mutable fields (or creates the record)
// and clears any tombstone. Client timestamps in the payload are discarded;
// updated_at_server is the call's sampled time.
func (s *Service) applyUpsert(ctx context.Context, op Operation, serverTime time.Time) (AppliedLog, error) {
	rec := &domain.LogRecord{
		ID:              op.RecordID,
		StartAt:         timeutil.EnsureUTC(op.Upsert.StartAt),
		EndAt:           timeutil.EnsureUTCPtr(op.Upsert.EndAt),
		Note:            op.Upsert.Note,
		UpdatedAtServer: serverTime,
		DeletedAtServer: nil,
	}

	if err := s.logs.Save(ctx, rec); err != nil {
		return AppliedLog{}, fmt.Errorf("upsert log %s: %w", op.RecordID, err)
	}

	return AppliedLog{ID: op.RecordID, UpdatedAtServer: serverTime, DeletedAtServer: nil}, nil
}

// applyDelete tombstones the record, leaving its interval and note intact.
// Deleting a never-seen id creates a tombstone record so the deletion is
// still observable by pulling clients; the client's deleted_at_local serves
// as a best-effort start_at placeholder.
func (s *Service) applyDelete(ctx context.Context, op Operation, serverTime time.Time) (AppliedLog, error) {
	rec, err := s.logs.Get(ctx, op.RecordID)
	switch {
	case err == nil:
		rec.UpdatedAtServer = serverTime
		rec.DeletedAtServer = &serverTime
	case errors.Is(err, domain.ErrNotFound):
		rec = &domain.LogRecord{
			ID:              op.RecordID,
			StartAt:         timeutil.EnsureUTC(op.Delete.DeletedAtLocal),
			UpdatedAtServer: serverTime,
			DeletedAtServer: &serverTime,
		}
	default:
		return AppliedLog{}, fmt.Errorf("get log %s: %w", op.RecordID, err)
	}

	if err := s.logs.Save(ctx, rec); err != nil {
		return AppliedLog{}, fmt.Errorf("delete log %s: %w", op.RecordID, err)
	}

	return AppliedLog{ID: op.RecordID, UpdatedAtServer: serverTime, DeletedAtServer: &serverTime}, nil
}
