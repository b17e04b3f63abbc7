// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/kinetiq/gaitway/internal/domain/trend"
)

// DashboardHandler handles dashboard view requests.
type DashboardHandler struct {
	deps Dependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

type dashboardResponse struct {
	PatientName     string              `json:"patient_name"`
	HealthScore     *float64            `json:"health_score"`
	Analysis        string              `json:"analysis,omitempty"`
	RiskTier        string              `json:"risk_tier"`
	GaugeOffset     float64             `json:"gauge_offset"`
	GaitAbnormality string              `json:"gait_abnormality"`
	SkinRisk        string              `json:"skin_risk"`
	Alerts          []string            `json:"alerts"`
	GaitTrend       []trend.Point       `json:"gait_trend"`
	HealthTrend     []trend.HealthPoint `json:"health_trend"`
}

// HandleDashboard handles GET /api/dashboard requests.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.Dashboard(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		PatientName:     view.PatientName,
		HealthScore:     view.HealthScore,
		Analysis:        view.Analysis,
		RiskTier:        view.RiskTier,
		GaugeOffset:     view.GaugeOffset,
		GaitAbnormality: view.GaitAbnormality,
		SkinRisk:        view.SkinRisk,
		Alerts:          view.Alerts,
		GaitTrend:       view.GaitTrend,
		HealthTrend:     view.HealthTrend,
	})
}
