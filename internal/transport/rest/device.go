package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// tokenIssuer defines the minimal interface needed by DeviceHandler.
type tokenIssuer interface {
	GenerateDeviceToken(deviceID string) (string, error)
}

// DeviceHandler serves device registration.
type DeviceHandler struct {
	issuer tokenIssuer
	log    *slog.Logger
}

// NewDeviceHandler creates a DeviceHandler.
func NewDeviceHandler(issuer tokenIssuer, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{issuer: issuer, log: logger.With("handler", "device")}
}

type registerDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

type registerDeviceResponse struct {
	DeviceID string `json:"device_id"`
	Token    string `json:"token"`
}

// Register handles POST /devices/register. It exchanges a client-chosen
// device identifier for a bearer token accepted by the sync endpoints.
// The route sits behind the internal-token gate so anonymous callers
// cannot mint tokens.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	token, err := h.issuer.GenerateDeviceToken(req.DeviceID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "generate device token", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.log.InfoContext(r.Context(), "device registered", slog.String("device_id", req.DeviceID))

	writeJSON(w, http.StatusOK, registerDeviceResponse{
		DeviceID: req.DeviceID,
		Token:    token,
	})
}
