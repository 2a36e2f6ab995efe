// Package sync implements the offline-first synchronization protocol:
// push (apply a batch of client operations exactly once per device) and
// pull (stream changes behind a stable composite cursor).
package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/wildlings-backend/internal/config"
	"github.com/heartmarshall/wildlings-backend/internal/domain"
)

type logRepo interface {
	Get(ctx context.Context, id string) (*domain.LogRecord, error)
	Save(ctx context.Context, rec *domain.LogRecord) error
	ListChanges(ctx context.Context, since time.Time, sinceID string, limit int) ([]*domain.LogRecord, error)
}

type opLedger interface {
	Exists(ctx context.Context, deviceID, opID string) (bool, error)
	Record(ctx context.Context, op *domain.AppliedOp) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides the push/pull sync operations over the log store and
// the applied-operation ledger.
//
// The clock is the single authority for timestamps: every mutation in a
// push call is stamped with one sampled server time, never with anything
// the client sent. Tests inject a fake clock for determinism.
type Service struct {
	logs     logRepo
	ledger   opLedger
	tx       txManager
	clock    clockwork.Clock
	pageSize int
	maxOps   int
	log      *slog.Logger
}

// NewService creates a new sync Service.
func NewService(
	log *slog.Logger,
	logs logRepo,
	ledger opLedger,
	tx txManager,
	clock clockwork.Clock,
	cfg config.SyncConfig,
) *Service {
	return &Service{
		logs:     logs,
		ledger:   ledger,
		tx:       tx,
		clock:    clock,
		pageSize: cfg.PullPageSize,
		maxOps:   cfg.MaxPushOps,
		log:      log.With("service", "sync"),
	}
}
