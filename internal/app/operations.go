package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kinetiq/gaitway/internal/adapters/backend"
	"github.com/kinetiq/gaitway/internal/adapters/cache"
	refreshqueue "github.com/kinetiq/gaitway/internal/adapters/mq/queue"
	repository "github.com/kinetiq/gaitway/internal/adapters/repository"
	"github.com/kinetiq/gaitway/internal/domain/compliance"
	"github.com/kinetiq/gaitway/internal/domain/model"
	"github.com/kinetiq/gaitway/internal/domain/risk"
	"github.com/kinetiq/gaitway/internal/domain/session"
	"github.com/kinetiq/gaitway/internal/domain/token"
	"github.com/kinetiq/gaitway/internal/domain/trend"
	"github.com/kinetiq/gaitway/pkg/logger"
	"github.com/kinetiq/gaitway/pkg/metrics"
)

const (
	monthLayout       = "2006-01"
	minPasswordLength = 6
)

// LoginView is the outcome of a successful login.
type LoginView struct {
	SessionID string
	Role      string

	// NeedsProfile is set for patient accounts with no linked patient
	// record yet; the UI routes those to profile setup first.
	NeedsProfile bool
}

// DashboardView is the fully derived dashboard render model.
type DashboardView struct {
	PatientName     string
	HealthScore     *float64
	Analysis        string
	RiskTier        string
	GaugeOffset     float64
	GaitAbnormality string
	SkinRisk        string
	Alerts          []string
	GaitTrend       []trend.Point
	HealthTrend     []trend.HealthPoint
}

// Login authenticates against the backend and mints a gateway session.
func (s *Service) Login(ctx context.Context, email, password string) (LoginView, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginView{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	res, err := s.backend.Login(ctx, backend.Credentials{Email: email, Password: password})
	if err != nil {
		return LoginView{}, err
	}

	// Claims are advisory display hints. A token the gateway cannot decode
	// is still a valid credential for the backend, so fall back to the
	// fields the login response carries.
	claims, err := token.Decode(res.AccessToken)
	if err != nil {
		s.logger.Warn(ctx, "undecodable access token; using login response fields", logger.Error(err))
		claims = token.Claims{}
	}
	if claims.Role == "" {
		claims.Role = res.Role
	}
	if claims.PatientID == "" {
		claims.PatientID = res.PatientID
	}

	sess, err := s.sessions.Create(ctx, res.AccessToken, claims)
	if err != nil {
		if errors.Is(err, repository.ErrStoreFull) {
			return LoginView{}, ErrTooManySessions
		}
		return LoginView{}, err
	}
	return LoginView{
		SessionID:    sess.ID,
		Role:         claims.Role,
		NeedsProfile: claims.Role == "patient" && claims.PatientID == "",
	}, nil
}

// Register creates a patient account. Shape checks run before any network
// call so an obviously bad form never reaches the backend.
func (s *Service) Register(ctx context.Context, fullName, email, password string) error {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	switch {
	case fullName == "":
		return fmt.Errorf("%w: full name is required", ErrInvalidInput)
	case !strings.Contains(email, "@") || !strings.Contains(email, "."):
		return fmt.Errorf("%w: email address looks invalid", ErrInvalidInput)
	case len(password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	return s.backend.Register(ctx, backend.Registration{
		FullName: fullName,
		Email:    email,
		Password: password,
		Role:     "patient",
	})
}

// Logout destroys the session. Unknown ids are a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	s.sessions.Revoke(ctx, sessionID)
}

// Session resolves a live session by id.
func (s *Service) Session(ctx context.Context, sessionID string) (session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return session.Session{}, ErrNoSession
		}
		return session.Session{}, err
	}
	return sess, nil
}

// Dashboard builds the dashboard view for a session: cached snapshot when
// available, fresh fetch otherwise, with all display derivations applied.
func (s *Service) Dashboard(ctx context.Context, sessionID string) (DashboardView, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return DashboardView{}, err
	}

	key := cacheKeyFor(sess)
	var snap model.DashboardSnapshot
	if s.snapshots.Get(ctx, cache.DashboardKey(key), &snap) {
		// Serve the cached copy and let a worker refresh it behind.
		s.enqueueRefresh(ctx, sess)
	} else {
		snap, err = s.backend.Dashboard(ctx, sess.Token)
		if err != nil {
			return DashboardView{}, s.upstreamError(ctx, sess, err)
		}
		s.snapshots.Set(ctx, cache.DashboardKey(key), snap)
	}

	metrics.RecordDashboardView()
	return s.renderDashboard(snap), nil
}

func (s *Service) renderDashboard(snap model.DashboardSnapshot) DashboardView {
	view := DashboardView{
		PatientName:     snap.PatientName,
		HealthScore:     snap.LatestHealthScore,
		Analysis:        snap.Analysis,
		GaitAbnormality: snap.GaitAbnormality,
		SkinRisk:        snap.SkinRisk,
		Alerts:          snap.RecentAlerts,
		GaitTrend:       trend.Reshape(snap.Trends, s.now()),
		HealthTrend:     trend.HealthSeries(snap.Trends, s.now()),
	}
	// A missing score renders as zero: empty gauge, high-risk tier.
	score := 0.0
	if snap.LatestHealthScore != nil {
		score = *snap.LatestHealthScore
	}
	view.RiskTier = risk.TierOf(score).String()
	view.GaugeOffset = risk.GaugeOffset(score)
	if len(view.Alerts) == 0 {
		view.Alerts = risk.Alerts(snap)
	}
	return view
}

// Calendar computes the attendance calendar for month (YYYY-MM, empty means
// the current month). A failed monthly fetch degrades to an empty record set
// so the calendar still renders.
func (s *Service) Calendar(ctx context.Context, sessionID, month string) (compliance.Result, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return compliance.Result{}, err
	}
	if month == "" {
		month = s.now().Format(monthLayout)
	}

	pid, err := s.patientID(ctx, sess)
	if err != nil {
		return compliance.Result{}, err
	}

	var records []model.DailyRecord
	if !s.snapshots.Get(ctx, cache.MonthlyKey(pid, month), &records) {
		records, err = s.backend.MonthlyMetrics(ctx, sess.Token, pid, month)
		switch {
		case errors.Is(err, backend.ErrUnauthorized):
			return compliance.Result{}, s.upstreamError(ctx, sess, err)
		case err != nil:
			s.logger.Warn(ctx, "monthly metrics unavailable; rendering empty calendar",
				logger.String("month", month), logger.Error(err))
			records = nil
		default:
			s.snapshots.Set(ctx, cache.MonthlyKey(pid, month), records)
		}
	}

	res, err := compliance.Compute(records, month, s.now())
	if err != nil {
		return compliance.Result{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	metrics.RecordComplianceComputation()
	return res, nil
}

// LatestMetrics returns the most recent daily record for the session's
// patient.
func (s *Service) LatestMetrics(ctx context.Context, sessionID string) (model.DailyRecord, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return model.DailyRecord{}, err
	}
	pid, err := s.patientID(ctx, sess)
	if err != nil {
		return model.DailyRecord{}, err
	}
	rec, err := s.backend.LatestMetrics(ctx, sess.Token, pid)
	if err != nil {
		return model.DailyRecord{}, s.upstreamError(ctx, sess, err)
	}
	return rec, nil
}

// SubmitDaily forwards a self-reported metrics submission, then drops the
// stale cached views and schedules a snapshot refresh.
func (s *Service) SubmitDaily(ctx context.Context, sessionID string, input model.DailyInput) (backend.DailyResult, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return backend.DailyResult{}, err
	}
	res, err := s.backend.SubmitDaily(ctx, sess.Token, input)
	if err != nil {
		return backend.DailyResult{}, s.upstreamError(ctx, sess, err)
	}
	s.invalidateViews(ctx, sess)
	s.enqueueRefresh(ctx, sess)
	return res, nil
}

// UploadGait forwards a gait CSV to the backend. Only .csv files are
// accepted; the size cap is enforced at the HTTP edge.
func (s *Service) UploadGait(ctx context.Context, sessionID, filename string, content []byte) (backend.UploadResult, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return backend.UploadResult{}, err
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return backend.UploadResult{}, fmt.Errorf("%w: only .csv files are accepted", ErrInvalidInput)
	}
	if len(content) == 0 {
		return backend.UploadResult{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	res, err := s.backend.UploadGait(ctx, sess.Token, filename, content)
	if err != nil {
		return backend.UploadResult{}, s.upstreamError(ctx, sess, err)
	}
	s.invalidateViews(ctx, sess)
	s.enqueueRefresh(ctx, sess)
	return res, nil
}

// Report downloads the patient's PDF report.
func (s *Service) Report(ctx context.Context, sessionID string) (backend.Report, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return backend.Report{}, err
	}
	pid, err := s.patientID(ctx, sess)
	if err != nil {
		return backend.Report{}, err
	}
	rep, err := s.backend.DownloadReport(ctx, sess.Token, pid)
	if err != nil {
		return backend.Report{}, s.upstreamError(ctx, sess, err)
	}
	return rep, nil
}

// SaveProfile forwards a profile create-or-update. Saving links the account
// to a patient record, so any cached views for this session are stale after.
func (s *Service) SaveProfile(ctx context.Context, sessionID string, input backend.ProfileInput) (backend.ProfileResult, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return backend.ProfileResult{}, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	switch {
	case input.Name == "":
		return backend.ProfileResult{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !strings.Contains(input.Email, "@") || !strings.Contains(input.Email, "."):
		return backend.ProfileResult{}, fmt.Errorf("%w: email address looks invalid", ErrInvalidInput)
	case input.Age <= 0:
		return backend.ProfileResult{}, fmt.Errorf("%w: age is required", ErrInvalidInput)
	case strings.TrimSpace(input.Gender) == "":
		return backend.ProfileResult{}, fmt.Errorf("%w: gender is required", ErrInvalidInput)
	}

	res, err := s.backend.SaveProfile(ctx, sess.Token, input)
	if err != nil {
		return backend.ProfileResult{}, s.upstreamError(ctx, sess, err)
	}
	s.invalidateViews(ctx, sess)
	return res, nil
}

// patientID resolves the patient id for a session: token claims first, then
// a profile fetch. With neither, dependent views abort rather than guessing.
func (s *Service) patientID(ctx context.Context, sess session.Session) (string, error) {
	if sess.Claims.PatientID != "" {
		return sess.Claims.PatientID, nil
	}
	prof, err := s.backend.Profile(ctx, sess.Token)
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return "", s.upstreamError(ctx, sess, err)
	case errors.Is(err, backend.ErrNotFound):
		return "", ErrNoPatientRecord
	case err != nil:
		return "", err
	}
	if prof.ID == "" {
		return "", ErrNoPatientRecord
	}
	return prof.ID, nil
}

// upstreamError normalizes backend failures. A 401 destroys the session: the
// token is dead, so the session bound to it is too.
func (s *Service) upstreamError(ctx context.Context, sess session.Session, err error) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		s.logger.Info(ctx, "upstream rejected session token; destroying session",
			logger.String("session", sess.ID))
		s.sessions.Revoke(ctx, sess.ID)
		return ErrSessionExpired
	}
	return err
}

// invalidateViews drops the cached payloads a data write makes stale.
func (s *Service) invalidateViews(ctx context.Context, sess session.Session) {
	key := cacheKeyFor(sess)
	keys := []string{cache.DashboardKey(key)}
	if sess.Claims.PatientID != "" {
		keys = append(keys, cache.MonthlyKey(sess.Claims.PatientID, s.now().Format(monthLayout)))
	}
	s.snapshots.Invalidate(ctx, keys...)
}

// enqueueRefresh schedules a best-effort snapshot refresh. Backpressure is
// not an error: the next view fetches synchronously instead.
func (s *Service) enqueueRefresh(ctx context.Context, sess session.Session) {
	job := refreshqueue.Job{PatientID: cacheKeyFor(sess), Bearer: sess.Token}
	if !s.refresh.Enqueue(ctx, job) {
		metrics.RecordRefreshEnqueueError()
		s.logger.Debug(ctx, "refresh queue full; skipping warm", logger.String("session", sess.ID))
	}
	metrics.UpdateRefreshQueueSize(s.refresh.Len(ctx))
}

// cacheKeyFor picks the most stable identity a session carries.
func cacheKeyFor(sess session.Session) string {
	switch {
	case sess.Claims.PatientID != "":
		return sess.Claims.PatientID
	case sess.Claims.UserID != "":
		return sess.Claims.UserID
	default:
		return sess.ID
	}
}
