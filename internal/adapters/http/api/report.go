// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// ReportHandler handles PDF report downloads.
type ReportHandler struct {
	deps Dependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Dependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleReport handles GET /api/report requests. The upstream PDF is streamed
// through unchanged.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.deps.Report(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	contentType := rep.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="gait_report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.Content)
}
