// Package opledger implements the applied-operation ledger using PostgreSQL.
// The ledger is append-only: one row per (device_id, op_id) pair, ever.
package opledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/wildlings-backend/internal/adapter/postgres"
	"github.com/heartmarshall/wildlings-backend/internal/domain"
)

// Repo provides applied-operation persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new applied-operation ledger repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const existsSQL = `
SELECT EXISTS (SELECT 1 FROM sync_ops WHERE device_id = $1 AND op_id = $2)`

const recordSQL = `
INSERT INTO sync_ops (device_id, op_id, entity, action, applied_at)
VALUES ($1, $2, $3, $4, $5)`

const getSQL = `
SELECT device_id, op_id, entity, action, applied_at
FROM sync_ops
WHERE device_id = $1 AND op_id = $2`

// Exists reports whether the (device, op) pair has already been applied.
func (r *Repo) Exists(ctx context.Context, deviceID, opID string) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := querier.QueryRow(ctx, existsSQL, deviceID, opID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check sync_op %s/%s: %w", deviceID, opID, err)
	}

	return exists, nil
}

// Record appends the applied-operation row. The ledger and the entity table
// must stay consistent within one transaction, so Record is a plain INSERT
// guarded by the caller's Exists check rather than an upsert; a concurrent
// duplicate surfaces as domain.ErrAlreadyExists via the primary key.
func (r *Repo) Record(ctx context.Context, op *domain.AppliedOp) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, recordSQL,
		op.DeviceID, op.OpID, string(op.Entity), string(op.Action), op.AppliedAt)
	if err != nil {
		return postgres.MapError(err, "sync_op", op.DeviceID+"/"+op.OpID)
	}

	return nil
}

// Get returns the recorded operation for the (device, op) pair.
// Returns domain.ErrNotFound if the pair was never applied.
func (r *Repo) Get(ctx context.Context, deviceID, opID string) (*domain.AppliedOp, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var op domain.AppliedOp
	var entity, action string
	err := querier.QueryRow(ctx, getSQL, deviceID, opID).Scan(
		&op.DeviceID, &op.OpID, &entity, &action, &op.AppliedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "sync_op", deviceID+"/"+opID)
	}

	op.Entity = domain.SyncEntity(entity)
	op.Action = domain.SyncAction(action)

	return &op, nil
}
