package sync

import (
	"fmt"
	"time"

	"github.com/heartmarshall/wildlings-backend/internal/domain"
)

// UpsertPayload carries the client's desired state for one log record.
// Any server-assigned timestamps the client echoes back are ignored at the
// transport boundary and never reach this struct.
type UpsertPayload struct {
	ID             string
	StartAt        time.Time
	EndAt          *time.Time
	Note           *string
	UpdatedAtLocal time.Time
	DeletedAtLocal *time.Time
}

// DeletePayload carries the client-side deletion info for one log record.
type DeletePayload struct {
	ID             string
	DeletedAtLocal time.Time
}

// Operation is one client-originated mutation intent.
// Exactly one of Upsert/Delete is set, matching Action.
type Operation struct {
	OpID     string
	Entity   domain.SyncEntity
	RecordID string
	Action   domain.SyncAction
	Upsert   *UpsertPayload
	Delete   *DeletePayload
}

// PushInput holds the parameters of one push call.
// ClientTime is advisory only; it is recorded in logs for debugging skew
// but never used to stamp data.
type PushInput struct {
	DeviceID   string
	ClientTime time.Time
	Ops        []Operation
}

// Validate checks structural integrity of the batch and collects all errors.
// Interval validation (end_at vs start_at) is NOT done here: it is a
// per-operation rejection handled by the push passes, not a request error.
func (i PushInput) Validate() error {
	var errs []domain.FieldError

	if i.DeviceID == "" {
		errs = append(errs, domain.FieldError{Field: "device_id", Message: "required"})
	}

	for n, op := range i.Ops {
		field := func(name string) string { return fmt.Sprintf("ops[%d].%s", n, name) }

		if op.OpID == "" {
			errs = append(errs, domain.FieldError{Field: field("op_id"), Message: "required"})
		}
		if op.RecordID == "" {
			errs = append(errs, domain.FieldError{Field: field("record_id"), Message: "required"})
		}
		if !op.Entity.Valid() {
			errs = append(errs, domain.FieldError{Field: field("entity"), Message: "must be \"log\""})
		}

		switch op.Action {
		case domain.SyncActionUpsert:
			if op.Upsert == nil {
				errs = append(errs, domain.FieldError{Field: field("payload"), Message: "required for upsert"})
			}
		case domain.SyncActionDelete:
			if op.Delete == nil {
				errs = append(errs, domain.FieldError{Field: field("payload"), Message: "required for delete"})
			}
		default:
			errs = append(errs, domain.FieldError{Field: field("action"), Message: "must be \"upsert\" or \"delete\""})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
