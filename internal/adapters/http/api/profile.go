// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/kinetiq/gaitway/internal/adapters/backend"
)

// ProfileHandler handles patient profile creation and updates.
type ProfileHandler struct {
	deps Dependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps Dependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

type profileResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleProfile handles POST /api/profile requests. Accounts flagged with
// needs_profile at login land here to link themselves to a patient record.
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req backend.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest.Error())
		return
	}
	res, err := h.deps.SaveProfile(r.Context(), sessionID(r), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		Status:  res.Status,
		Message: res.Message,
	})
}
