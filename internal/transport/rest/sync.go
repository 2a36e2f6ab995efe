package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/wildlings-backend/internal/domain"
	syncsvc "github.com/heartmarshall/wildlings-backend/internal/service/sync"
	"github.com/heartmarshall/wildlings-backend/pkg/ctxutil"
	"github.com/heartmarshall/wildlings-backend/pkg/timeutil"
)

// syncService defines the minimal interface needed by SyncHandler.
type syncService interface {
	Push(ctx context.Context, input syncsvc.PushInput) (*syncsvc.PushResult, error)
	Pull(ctx context.Context, cursor string) (*syncsvc.PullResult, error)
}

// SyncHandler serves the push/pull sync endpoints.
type SyncHandler struct {
	svc syncService
	log *slog.Logger
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(svc syncService, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{svc: svc, log: logger.With("handler", "sync")}
}

type pushRequest struct {
	DeviceID   string             `json:"device_id"`
	ClientTime time.Time          `json:"client_time"`
	Ops        []operationRequest `json:"ops"`
}

type operationRequest struct {
	OpID     string          `json:"op_id"`
	Entity   string          `json:"entity"`
	RecordID string          `json:"record_id"`
	Action   string          `json:"action"`
	Payload  json.RawMessage `json:"payload"`
}

// upsertPayload deliberately has no updated_at_server/deleted_at_server
// fields: clients may echo them back, but they are dropped on decode and
// reassigned by the server.
type upsertPayload struct {
	ID             string     `json:"id"`
	StartAt        time.Time  `json:"start_at"`
	EndAt          *time.Time `json:"end_at"`
	Note           *string    `json:"note"`
	UpdatedAtLocal time.Time  `json:"updated_at_local"`
	DeletedAtLocal *time.Time `json:"deleted_at_local"`
}

type deletePayload struct {
	ID             string    `json:"id"`
	DeletedAtLocal time.Time `json:"deleted_at_local"`
}

type pushResponse struct {
	ServerTime string          `json:"server_time"`
	AckOpIDs   []string        `json:"ack_op_ids"`
	Rejected   []rejectedOp    `json:"rejected"`
	Applied    appliedResponse `json:"applied"`
	NextCursor string          `json:"next_cursor"`
}

type rejectedOp struct {
	OpID    string `json:"op_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type appliedResponse struct {
	Logs []appliedLog `json:"logs"`
}

type appliedLog struct {
	ID              string  `json:"id"`
	UpdatedAtServer string  `json:"updated_at_server"`
	DeletedAtServer *string `json:"deleted_at_server"`
}

type pullResponse struct {
	ServerTime string          `json:"server_time"`
	NextCursor string          `json:"next_cursor"`
	Changes    changesResponse `json:"changes"`
}

type changesResponse struct {
	Logs []logResponse `json:"logs"`
}

type logResponse struct {
	ID              string  `json:"id"`
	StartAt         string  `json:"start_at"`
	EndAt           *string `json:"end_at"`
	Note            *string `json:"note"`
	UpdatedAtServer string  `json:"updated_at_server"`
	DeletedAtServer *string `json:"deleted_at_server"`
}

// Push handles POST /sync/push.
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := toPushInput(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Push(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPushResponse(result))
}

// Pull handles GET /sync/pull?cursor=...
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Pull(r.Context(), r.URL.Query().Get("cursor"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPullResponse(result))
}

func (h *SyncHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedCursor):
		writeError(w, http.StatusBadRequest, "malformed cursor")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toPushInput(ctx context.Context, req pushRequest) (syncsvc.PushInput, error) {
	deviceID := req.DeviceID
	if deviceID == "" {
		if id, ok := ctxutil.DeviceIDFromCtx(ctx); ok {
			deviceID = id
		}
	}

	input := syncsvc.PushInput{
		DeviceID:   deviceID,
		ClientTime: req.ClientTime,
		Ops:        make([]syncsvc.Operation, 0, len(req.Ops)),
	}

	for _, op := range req.Ops {
		out := syncsvc.Operation{
			OpID:     op.OpID,
			Entity:   domain.SyncEntity(op.Entity),
			RecordID: op.RecordID,
			Action:   domain.SyncAction(op.Action),
		}

		// Payload decoding follows the declared action; an unknown action
		// passes through with no payload and is rejected by validation.
		switch out.Action {
		case domain.SyncActionUpsert:
			if len(op.Payload) > 0 {
				var p upsertPayload
				if err := json.Unmarshal(op.Payload, &p); err != nil {
					return syncsvc.PushInput{}, errors.New("invalid upsert payload")
				}
				out.Upsert = &syncsvc.UpsertPayload{
					ID:             p.ID,
					StartAt:        p.StartAt,
					EndAt:          p.EndAt,
					Note:           p.Note,
					UpdatedAtLocal: p.UpdatedAtLocal,
					DeletedAtLocal: p.DeletedAtLocal,
				}
			}
		case domain.SyncActionDelete:
			if len(op.Payload) > 0 {
				var p deletePayload
				if err := json.Unmarshal(op.Payload, &p); err != nil {
					return syncsvc.PushInput{}, errors.New("invalid delete payload")
				}
				out.Delete = &syncsvc.DeletePayload{
					ID:             p.ID,
					DeletedAtLocal: p.DeletedAtLocal,
				}
			}
		}

		input.Ops = append(input.Ops, out)
	}

	return input, nil
}

func toPushResponse(result *syncsvc.PushResult) pushResponse {
	resp := pushResponse{
		ServerTime: timeutil.FormatISO(result.ServerTime),
		AckOpIDs:   result.AckOpIDs,
		Rejected:   make([]rejectedOp, 0, len(result.Rejected)),
		Applied:    appliedResponse{Logs: make([]appliedLog, 0, len(result.Applied))},
		NextCursor: result.NextCursor,
	}

	for _, rej := range result.Rejected {
		resp.Rejected = append(resp.Rejected, rejectedOp{
			OpID:    rej.OpID,
			Code:    rej.Code,
			Message: rej.Message,
		})
	}
	for _, a := range result.Applied {
		resp.Applied.Logs = append(resp.Applied.Logs, appliedLog{
			ID:              a.ID,
			UpdatedAtServer: timeutil.FormatISO(a.UpdatedAtServer),
			DeletedAtServer: timeutil.FormatISOPtr(a.DeletedAtServer),
		})
	}

	return resp
}

func toPullResponse(result *syncsvc.PullResult) pullResponse {
	resp := pullResponse{
		ServerTime: timeutil.FormatISO(result.ServerTime),
		NextCursor: result.NextCursor,
		Changes:    changesResponse{Logs: make([]logResponse, 0, len(result.Logs))},
	}

	for _, rec := range result.Logs {
		resp.Changes.Logs = append(resp.Changes.Logs, logResponse{
			ID:              rec.ID,
			StartAt:         timeutil.FormatISO(rec.StartAt),
			EndAt:           timeutil.FormatISOPtr(rec.EndAt),
			Note:            rec.Note,
			UpdatedAtServer: timeutil.FormatISO(rec.UpdatedAtServer),
			DeletedAtServer: timeutil.FormatISOPtr(rec.DeletedAtServer),
		})
	}

	return resp
}
