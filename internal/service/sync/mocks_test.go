package sync

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/wildlings-backend/internal/domain"
)

var _ logRepo = &logRepoMock{}

type logRepoMock struct {
	GetFunc         func(ctx context.Context, id string) (*domain.LogRecord, error)
	SaveFunc        func(ctx context.Context, rec *domain.LogRecord) error
	ListChangesFunc func(ctx context.Context, since time.Time, sinceID string, limit int) ([]*domain.LogRecord, error)

	calls struct {
		Get         []string
		Save        []*domain.LogRecord
		ListChanges []struct {
			Since   time.Time
			SinceID string
			Limit   int
		}
	}
	mu sync.Mutex
}

func (mock *logRepoMock) Get(ctx context.Context, id string) (*domain.LogRecord, error) {
	if mock.GetFunc == nil {
		panic("logRepoMock.GetFunc: method is nil but logRepo.Get was just called")
	}
	mock.mu.Lock()
	mock.calls.Get = append(mock.calls.Get, id)
	mock.mu.Unlock()
	return mock.GetFunc(ctx, id)
}

func (mock *logRepoMock) Save(ctx context.Context, rec *domain.LogRecord) error {
	if mock.SaveFunc == nil {
		panic("logRepoMock.SaveFunc: method is nil but logRepo.Save was just called")
	}
	mock.mu.Lock()
	saved := *rec
	mock.calls.Save = append(mock.calls.Save, &saved)
	mock.mu.Unlock()
	return mock.SaveFunc(ctx, rec)
}

func (mock *logRepoMock) ListChanges(ctx context.Context, since time.Time, sinceID string, limit int) ([]*domain.LogRecord, error) {
	if mock.ListChangesFunc == nil {
		panic("logRepoMock.ListChangesFunc: method is nil but logRepo.ListChanges was just called")
	}
	mock.mu.Lock()
	mock.calls.ListChanges = append(mock.calls.ListChanges, struct {
		Since   time.Time
		SinceID string
		Limit   int
	}{since, sinceID, limit})
	mock.mu.Unlock()
	return mock.ListChangesFunc(ctx, since, sinceID, limit)
}

func (mock *logRepoMock) SaveCalls() []*domain.LogRecord {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.Save
}

func (mock *logRepoMock) ListChangesCalls() []struct {
	Since   time.Time
	SinceID string
	Limit   int
} {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.ListChanges
}

var _ opLedger = &opLedgerMock{}

type opLedgerMock struct {
	ExistsFunc func(ctx context.Context, deviceID, opID string) (bool, error)
	RecordFunc func(ctx context.Context, op *domain.AppliedOp) error

	calls struct {
		Exists []struct{ DeviceID, OpID string }
		Record []*domain.AppliedOp
	}
	mu sync.Mutex
}

func (mock *opLedgerMock) Exists(ctx context.Context, deviceID, opID string) (bool, error) {
	if mock.ExistsFunc == nil {
		panic("opLedgerMock.ExistsFunc: method is nil but opLedger.Exists was just called")
	}
	mock.mu.Lock()
	mock.calls.Exists = append(mock.calls.Exists, struct{ DeviceID, OpID string }{deviceID, opID})
	mock.mu.Unlock()
	return mock.ExistsFunc(ctx, deviceID, opID)
}

func (mock *opLedgerMock) Record(ctx context.Context, op *domain.AppliedOp) error {
	if mock.RecordFunc == nil {
		panic("opLedgerMock.RecordFunc: method is nil but opLedger.Record was just called")
	}
	mock.mu.Lock()
	recorded := *op
	mock.calls.Record = append(mock.calls.Record, &recorded)
	mock.mu.Unlock()
	return mock.RecordFunc(ctx, op)
}

func (mock *opLedgerMock) RecordCalls() []*domain.AppliedOp {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.calls.Record
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	mu   sync.Mutex
	runs int
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	mock.mu.Lock()
	mock.runs++
	mock.mu.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() int {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.runs
}
