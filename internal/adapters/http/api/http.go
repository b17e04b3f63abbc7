// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kinetiq/gaitway/internal/adapters/backend"
	service "github.com/kinetiq/gaitway/internal/app"
	"github.com/kinetiq/gaitway/internal/domain/compliance"
	"github.com/kinetiq/gaitway/internal/domain/model"
)

// sessionCookie is the cookie the gateway sets on login. Browser clients use
// it implicitly; API clients may send the session id as a bearer token
// instead.
const sessionCookie = "gaitway_session"

// LoginView mirrors the login outcome returned by the application layer.
type LoginView = service.LoginView

// DashboardView mirrors the derived dashboard render model.
type DashboardView = service.DashboardView

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Login(ctx context.Context, email, password string) (LoginView, error)
	Register(ctx context.Context, fullName, email, password string) error
	Logout(ctx context.Context, sessionID string)

	Dashboard(ctx context.Context, sessionID string) (DashboardView, error)
	Calendar(ctx context.Context, sessionID, month string) (compliance.Result, error)
	LatestMetrics(ctx context.Context, sessionID string) (model.DailyRecord, error)
	SubmitDaily(ctx context.Context, sessionID string, input model.DailyInput) (backend.DailyResult, error)
	SaveProfile(ctx context.Context, sessionID string, input backend.ProfileInput) (backend.ProfileResult, error)
	UploadGait(ctx context.Context, sessionID, filename string, content []byte) (backend.UploadResult, error)
	Report(ctx context.Context, sessionID string) (backend.Report, error)
}

// StatsProvider exposes runtime statistics for monitoring.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the gateway API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	authHandler     *AuthHandler
	dashHandler     *DashboardHandler
	calendarHandler *CalendarHandler
	metricsHandler  *MetricsHandler
	profileHandler  *ProfileHandler
	uploadHandler   *UploadHandler
	reportHandler   *ReportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxUploadBytes int64) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		authHandler:     NewAuthHandler(deps),
		dashHandler:     NewDashboardHandler(deps),
		calendarHandler: NewCalendarHandler(deps),
		metricsHandler:  NewMetricsHandler(deps),
		profileHandler:  NewProfileHandler(deps),
		uploadHandler:   NewUploadHandler(deps, maxUploadBytes),
		reportHandler:   NewReportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/api/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/auth/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))
	mux.HandleFunc("/api/auth/register", MetricsMiddleware(s.authHandler.HandleRegister, "register"))
	mux.HandleFunc("/api/auth/logout", MetricsMiddleware(s.authHandler.HandleLogout, "logout"))
	mux.HandleFunc("/api/dashboard", MetricsMiddleware(s.dashHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("/api/calendar", MetricsMiddleware(s.calendarHandler.HandleCalendar, "calendar"))
	mux.HandleFunc("/api/metrics", MetricsMiddleware(s.metricsHandler.HandleSubmit, "metrics"))
	mux.HandleFunc("/api/metrics/latest", MetricsMiddleware(s.metricsHandler.HandleLatest, "metrics_latest"))
	mux.HandleFunc("/api/profile", MetricsMiddleware(s.profileHandler.HandleProfile, "profile"))
	mux.HandleFunc("/api/uploads/gait", MetricsMiddleware(s.uploadHandler.HandleUpload, "upload_gait"))
	mux.HandleFunc("/api/report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeAppError translates application and upstream errors to HTTP responses.
func writeAppError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, service.ErrNoSession), errors.Is(err, service.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, service.ErrNoPatientRecord):
		writeError(w, http.StatusNotFound, "no_patient_record", err.Error())
	case errors.Is(err, service.ErrTooManySessions):
		writeError(w, http.StatusTooManyRequests, "session_capacity", err.Error())
	case errors.Is(err, backend.ErrUnauthorized):
		// A 401 straight from the backend happens before a session exists,
		// i.e. rejected credentials. Surface the backend's own message.
		msg := ""
		if errors.As(err, &apiErr) {
			msg = apiErr.Message()
		}
		writeError(w, http.StatusUnauthorized, "unauthorized", msg)
	case errors.Is(err, backend.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, backend.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "backend_unavailable", "The service is temporarily unavailable. Please try again.")
	case errors.As(err, &apiErr):
		// Surface the backend's own message with its status.
		writeError(w, apiErr.StatusCode, "backend_error", apiErr.Message())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// sessionID extracts the caller's session id: bearer token first, cookie
// second. An empty return means the caller is anonymous.
func sessionID(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if tok, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func setSessionCookie(w http.ResponseWriter, id string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
