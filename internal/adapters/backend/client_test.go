package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kinetiq/gaitway/internal/adapters/backend"
	"github.com/kinetiq/gaitway/internal/domain/model"
	"github.com/kinetiq/gaitway/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.Handler) *backend.Client {
	t.Helper()
	require.NoError(t, logger.Init())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL, 5*time.Second, logger.Get())
}

func TestLogin(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds backend.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "jo@example.com", creds.Email)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(backend.LoginResult{
			AccessToken: "token-123",
			TokenType:   "bearer",
			Role:        "patient",
			PatientID:   "patient-9",
		})
	}))

	result, err := client.Login(context.Background(), backend.Credentials{
		Email:    "jo@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "token-123", result.AccessToken)
	assert.Equal(t, "patient-9", result.PatientID)
}

func TestLoginRejected(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	}))

	_, err := client.Login(context.Background(), backend.Credentials{})
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	// The server's own message rides along with the sentinel.
	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Incorrect email or password", apiErr.Message())
}

func TestDashboardAttachesBearer(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/patient/dashboard", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		score := 88.0
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.DashboardSnapshot{
			PatientName:       "Jo",
			LatestHealthScore: &score,
			Trends:            model.Trends{Symmetry: []float64{0.8, 0.9}},
		})
	}))

	snap, err := client.Dashboard(context.Background(), "token-123")
	require.NoError(t, err)
	assert.Equal(t, "Jo", snap.PatientName)
	require.NotNil(t, snap.LatestHealthScore)
	assert.InDelta(t, 88.0, *snap.LatestHealthScore, 0.001)
}

func TestMonthlyMetrics(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/patient/daily_metrics/patient-9", r.URL.Path)
		assert.Equal(t, "2026-03", r.URL.Query().Get("month"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]model.DailyRecord{
			{Date: "2026-03-01", WalkingSpeedMPS: 1.2, GaitSymmetryIndex: 0.8, StepLengthCM: 60, CadenceSPM: 100},
		})
	}))

	records, err := client.MonthlyMetrics(context.Background(), "tok", "patient-9", "2026-03")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-03-01", records[0].Date)
}

func TestErrorDetailSurfaced(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Only Gmail addresses are allowed"}`))
	}))

	err := client.Register(context.Background(), backend.Registration{Email: "jo@example.com"})
	require.Error(t, err)

	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Only Gmail addresses are allowed", apiErr.Message())
}

func TestErrorDetailFallback(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))

	err := client.Register(context.Background(), backend.Registration{})
	require.Error(t, err)

	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Request failed. Please try again.", apiErr.Message())
}

func TestProfileNotFound(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Profile not found"}`))
	}))

	_, err := client.Profile(context.Background(), "tok")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestSaveProfile(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/patient/profile", r.URL.Path)

		var input backend.ProfileInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "Jo", input.Name)
		require.NotNil(t, input.HeightCM)
		assert.InDelta(t, 178.0, *input.HeightCM, 0.001)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(backend.ProfileResult{
			Status:  "success",
			Message: "Profile created successfully",
		})
	}))

	height := 178.0
	result, err := client.SaveProfile(context.Background(), "tok", backend.ProfileInput{
		Name:     "Jo",
		Email:    "jo@example.com",
		Age:      34,
		Gender:   "female",
		HeightCM: &height,
	})
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
}

func TestUploadGait(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/patient/upload-gait", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "gait.csv", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(backend.UploadResult{Message: "Upload successful", RecordID: "rec-1"})
	}))

	result, err := client.UploadGait(context.Background(), "tok", "gait.csv", []byte("t,x\n0,1\n"))
	require.NoError(t, err)
	assert.Equal(t, "rec-1", result.RecordID)
}

func TestDownloadReport(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/report/download/patient-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))

	report, err := client.DownloadReport(context.Background(), "tok", "patient-9")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.Contains(t, string(report.Content), "%PDF")
}

func TestBackendUnreachable(t *testing.T) {
	require.NoError(t, logger.Init())
	client := backend.New("http://127.0.0.1:1", 500*time.Millisecond, logger.Get())

	_, err := client.Dashboard(context.Background(), "tok")
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}
