package domain

import (
	"time"
)

// SyncAction is the kind of a client-originated mutation.
type SyncAction string

const (
	SyncActionUpsert SyncAction = "upsert"
	SyncActionDelete SyncAction = "delete"
)

// Valid reports whether the action is one of the known kinds.
func (a SyncAction) Valid() bool {
	return a == SyncActionUpsert || a == SyncActionDelete
}

// SyncEntity is the entity type targeted by a sync operation.
// Only logs are synchronized; the type exists so the ledger stays
// meaningful if more entities are ever added.
type SyncEntity string

const (
	SyncEntityLog SyncEntity = "log"
)

// Valid reports whether the entity is a known synchronized type.
func (e SyncEntity) Valid() bool {
	return e == SyncEntityLog
}

// AppliedOp records that a (device, operation) pair has been applied.
//
// The (DeviceID, OpID) composite key is the idempotence guard for push:
// a pair is recorded at most once, ever, and the table is append-only.
// Entity and Action are retained for audit and debugging only.
type AppliedOp struct {
	DeviceID  string
	OpID      string
	Entity    SyncEntity
	Action    SyncAction
	AppliedAt time.Time
}
