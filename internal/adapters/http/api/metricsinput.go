// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kinetiq/gaitway/internal/domain/model"
)

// MetricsHandler handles daily metrics submission and retrieval.
type MetricsHandler struct {
	deps Dependencies
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(deps Dependencies) *MetricsHandler {
	return &MetricsHandler{deps: deps}
}

type dailyInputRequest struct {
	model.DailyInput
}

// validate rejects submissions whose core gait fields are missing or
// non-positive before they reach the backend.
func (r dailyInputRequest) validate() error {
	switch {
	case r.WalkingSpeedMPS <= 0:
		return errors.New("walking_speed_mps must be positive")
	case r.GaitSymmetryIndex <= 0:
		return errors.New("gait_symmetry_index must be positive")
	case r.StepLengthCM <= 0:
		return errors.New("step_length_cm must be positive")
	case r.CadenceSPM <= 0:
		return errors.New("cadence_spm must be positive")
	}
	return nil
}

type dailyInputResponse struct {
	Message         string  `json:"message"`
	GaitAbnormality string  `json:"gait_abnormality,omitempty"`
	SkinRisk        string  `json:"skin_risk,omitempty"`
	HealthScore     float64 `json:"health_score,omitempty"`
}

// HandleSubmit handles POST /api/metrics requests.
func (h *MetricsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req dailyInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	res, err := h.deps.SubmitDaily(r.Context(), sessionID(r), req.DailyInput)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyInputResponse{
		Message:         res.Message,
		GaitAbnormality: res.GaitAbnormality,
		SkinRisk:        res.SkinRisk,
		HealthScore:     res.HealthScore,
	})
}

// HandleLatest handles GET /api/metrics/latest requests.
func (h *MetricsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rec, err := h.deps.LatestMetrics(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
