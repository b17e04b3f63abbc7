// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/kinetiq/gaitway/internal/domain/compliance"
)

// CalendarHandler handles attendance calendar requests.
type CalendarHandler struct {
	deps Dependencies
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(deps Dependencies) *CalendarHandler {
	return &CalendarHandler{deps: deps}
}

type calendarTile struct {
	Day   int    `json:"day"`
	State string `json:"state"`
	Today bool   `json:"today"`
}

type calendarResponse struct {
	Month         string         `json:"month"`
	DaysInMonth   int            `json:"days_in_month"`
	LeadingBlanks int            `json:"leading_blanks"`
	AttendedCount int            `json:"attended_count"`
	CompliancePct int            `json:"compliance_pct"`
	Tiles         []calendarTile `json:"tiles"`
}

// HandleCalendar handles GET /api/calendar?month=YYYY-MM requests. A missing
// month means the current one.
func (h *CalendarHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	res, err := h.deps.Calendar(r.Context(), sessionID(r), r.URL.Query().Get("month"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calendarResponseFrom(res))
}

func calendarResponseFrom(res compliance.Result) calendarResponse {
	out := calendarResponse{
		Month:         res.Month,
		DaysInMonth:   res.DaysInMonth,
		LeadingBlanks: res.LeadingBlanks,
		AttendedCount: res.AttendedCount,
		CompliancePct: res.CompliancePct,
		Tiles:         make([]calendarTile, 0, len(res.Tiles)),
	}
	for _, tile := range res.Tiles {
		out.Tiles = append(out.Tiles, calendarTile{
			Day:   tile.Day,
			State: tile.State.String(),
			Today: tile.Today,
		})
	}
	return out
}
