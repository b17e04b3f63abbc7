// Package backend is the HTTP client for the clinical backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kinetiq/gaitway/internal/domain/model"
	"github.com/kinetiq/gaitway/pkg/logger"
	"github.com/kinetiq/gaitway/pkg/metrics"
)

const defaultTimeout = 30 * time.Second

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body. Role is always "patient" for
// gateway-driven signups.
type Registration struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is the token grant returned by the backend.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	PatientID   string `json:"patient_id"`
}

// Profile is the subset of the patient profile the gateway reads.
type Profile struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// ProfileInput is the create-or-update profile request body. Optional vitals
// are pointers so omitted fields stay out of the JSON entirely.
type ProfileInput struct {
	Name                   string   `json:"name"`
	Email                  string   `json:"email"`
	Age                    int      `json:"age"`
	Gender                 string   `json:"gender"`
	HeightCM               *float64 `json:"height_cm,omitempty"`
	WeightKG               *float64 `json:"weight_kg,omitempty"`
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic,omitempty"`
	BloodSugarMgDL         *int     `json:"blood_sugar_mg_dl,omitempty"`
	MedicalConditions      []string `json:"medical_conditions,omitempty"`
	AmputationLevel        string   `json:"amputation_level,omitempty"`
	DeviceType             string   `json:"device_type,omitempty"`
}

// ProfileResult acknowledges a profile create or update.
type ProfileResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DailyResult is the backend's response to a daily metrics submission.
type DailyResult struct {
	Message         string  `json:"message"`
	GaitAbnormality string  `json:"gait_abnormality"`
	SkinRisk        string  `json:"skin_risk"`
	HealthScore     float64 `json:"health_score"`
}

// UploadResult acknowledges a gait CSV upload.
type UploadResult struct {
	Message  string `json:"message"`
	RecordID string `json:"record_id"`
}

// Report is a downloaded PDF blob.
type Report struct {
	Content     []byte
	ContentType string
}

// Client issues requests against the configured backend base URL. No request
// is retried automatically; all retry is the user's.
type Client struct {
	http   *resty.Client
	logger logger.Logger
}

// New creates a backend client. The base URL is resolved once at startup.
func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		logger: log,
	}
}

// Login exchanges credentials for a token grant.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var result LoginResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(creds).
		SetResult(&result).
		Post("/auth/login")
	if err := c.check(ctx, "login", resp, err); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Register creates a new account upstream.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reg).
		Post("/auth/register")
	return c.check(ctx, "register", resp, err)
}

// Dashboard fetches the aggregated dashboard payload for the token's patient.
func (c *Client) Dashboard(ctx context.Context, bearer string) (model.DashboardSnapshot, error) {
	var snap model.DashboardSnapshot
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetResult(&snap).
		Get("/patient/dashboard")
	if err := c.check(ctx, "dashboard", resp, err); err != nil {
		return model.DashboardSnapshot{}, err
	}
	return snap, nil
}

// LatestMetrics fetches the most recent daily record for a patient.
func (c *Client) LatestMetrics(ctx context.Context, bearer, patientID string) (model.DailyRecord, error) {
	var record model.DailyRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetResult(&record).
		Get(fmt.Sprintf("/patient/daily_metrics/%s/latest", patientID))
	if err := c.check(ctx, "latest_metrics", resp, err); err != nil {
		return model.DailyRecord{}, err
	}
	return record, nil
}

// MonthlyMetrics fetches the daily records for a patient and month (YYYY-MM).
func (c *Client) MonthlyMetrics(ctx context.Context, bearer, patientID, month string) ([]model.DailyRecord, error) {
	var records []model.DailyRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetQueryParam("month", month).
		SetResult(&records).
		Get(fmt.Sprintf("/patient/daily_metrics/%s", patientID))
	if err := c.check(ctx, "monthly_metrics", resp, err); err != nil {
		return nil, err
	}
	return records, nil
}

// SubmitDaily forwards a daily metrics submission.
func (c *Client) SubmitDaily(ctx context.Context, bearer string, input model.DailyInput) (DailyResult, error) {
	var result DailyResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetBody(input).
		SetResult(&result).
		Post("/patient/daily-input")
	if err := c.check(ctx, "daily_input", resp, err); err != nil {
		return DailyResult{}, err
	}
	return result, nil
}

// UploadGait forwards a gait CSV as a multipart upload.
func (c *Client) UploadGait(ctx context.Context, bearer, filename string, content []byte) (UploadResult, error) {
	var result UploadResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetFileReader("file", filename, bytes.NewReader(content)).
		SetResult(&result).
		Post("/patient/upload-gait")
	if err := c.check(ctx, "upload_gait", resp, err); err != nil {
		return UploadResult{}, err
	}
	return result, nil
}

// Profile fetches the caller's patient profile.
func (c *Client) Profile(ctx context.Context, bearer string) (Profile, error) {
	var profile Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetResult(&profile).
		Get("/patient/profile")
	if err := c.check(ctx, "profile", resp, err); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// SaveProfile creates or updates the caller's patient profile. The backend
// upserts on the account id, so repeat calls are safe.
func (c *Client) SaveProfile(ctx context.Context, bearer string, input ProfileInput) (ProfileResult, error) {
	var result ProfileResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetBody(input).
		SetResult(&result).
		Post("/patient/profile")
	if err := c.check(ctx, "save_profile", resp, err); err != nil {
		return ProfileResult{}, err
	}
	return result, nil
}

// DownloadReport fetches the generated PDF report for a patient.
func (c *Client) DownloadReport(ctx context.Context, bearer, patientID string) (Report, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetHeader("Accept", "application/pdf").
		Get(fmt.Sprintf("/report/download/%s", patientID))
	if err := c.check(ctx, "download_report", resp, err); err != nil {
		return Report{}, err
	}
	return Report{
		Content:     resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}

// check normalizes transport errors and non-2xx responses into typed errors
// and records client metrics.
func (c *Client) check(ctx context.Context, op string, resp *resty.Response, err error) error {
	if err != nil {
		metrics.RecordUpstreamRequest(op, "transport_error")
		metrics.RecordErrorByComponent("backend", "transport")
		c.logger.Error(ctx, "backend call failed",
			logger.String("operation", op),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
	}

	metrics.RecordUpstreamLatency(float64(resp.Time().Milliseconds()))

	status := resp.StatusCode()
	switch {
	case resp.IsSuccess():
		metrics.RecordUpstreamRequest(op, "ok")
		return nil
	case status == 401:
		metrics.RecordUpstreamRequest(op, "unauthorized")
		apiErr := &APIError{StatusCode: status, Detail: extractDetail(resp.Body())}
		return fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, apiErr)
	case status == 404:
		metrics.RecordUpstreamRequest(op, "not_found")
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		metrics.RecordUpstreamRequest(op, "error")
		apiErr := &APIError{StatusCode: status, Detail: extractDetail(resp.Body())}
		c.logger.Warn(ctx, "backend returned error status",
			logger.String("operation", op),
			logger.Int("status", status),
			logger.String("detail", apiErr.Detail),
		)
		return fmt.Errorf("%s: %w", op, apiErr)
	}
}

// extractDetail pulls the FastAPI-style {"detail": "..."} message out of an
// error body when it is a plain string.
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
