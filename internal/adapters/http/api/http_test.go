package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kinetiq/gaitway/internal/adapters/backend"
	"github.com/kinetiq/gaitway/internal/adapters/http/api"
	service "github.com/kinetiq/gaitway/internal/app"
	"github.com/kinetiq/gaitway/internal/domain/compliance"
	"github.com/kinetiq/gaitway/internal/domain/model"
	"github.com/kinetiq/gaitway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// mockDeps implements api.Dependencies with overridable function fields.
type mockDeps struct {
	loginFn    func(ctx context.Context, email, password string) (api.LoginView, error)
	registerFn func(ctx context.Context, fullName, email, password string) error
	logoutIDs  []string

	dashboardFn func(ctx context.Context, sessionID string) (api.DashboardView, error)
	calendarFn  func(ctx context.Context, sessionID, month string) (compliance.Result, error)
	latestFn    func(ctx context.Context, sessionID string) (model.DailyRecord, error)
	submitFn    func(ctx context.Context, sessionID string, input model.DailyInput) (backend.DailyResult, error)
	profileFn   func(ctx context.Context, sessionID string, input backend.ProfileInput) (backend.ProfileResult, error)
	uploadFn    func(ctx context.Context, sessionID, filename string, content []byte) (backend.UploadResult, error)
	reportFn    func(ctx context.Context, sessionID string) (backend.Report, error)
}

func (m *mockDeps) Login(ctx context.Context, email, password string) (api.LoginView, error) {
	if m.loginFn == nil {
		return api.LoginView{}, service.ErrInvalidInput
	}
	return m.loginFn(ctx, email, password)
}

func (m *mockDeps) Register(ctx context.Context, fullName, email, password string) error {
	if m.registerFn == nil {
		return nil
	}
	return m.registerFn(ctx, fullName, email, password)
}

func (m *mockDeps) Logout(_ context.Context, sessionID string) {
	m.logoutIDs = append(m.logoutIDs, sessionID)
}

func (m *mockDeps) Dashboard(ctx context.Context, sessionID string) (api.DashboardView, error) {
	if m.dashboardFn == nil {
		return api.DashboardView{}, service.ErrNoSession
	}
	return m.dashboardFn(ctx, sessionID)
}

func (m *mockDeps) Calendar(ctx context.Context, sessionID, month string) (compliance.Result, error) {
	if m.calendarFn == nil {
		return compliance.Result{}, service.ErrNoSession
	}
	return m.calendarFn(ctx, sessionID, month)
}

func (m *mockDeps) LatestMetrics(ctx context.Context, sessionID string) (model.DailyRecord, error) {
	if m.latestFn == nil {
		return model.DailyRecord{}, service.ErrNoSession
	}
	return m.latestFn(ctx, sessionID)
}

func (m *mockDeps) SubmitDaily(ctx context.Context, sessionID string, input model.DailyInput) (backend.DailyResult, error) {
	if m.submitFn == nil {
		return backend.DailyResult{}, service.ErrNoSession
	}
	return m.submitFn(ctx, sessionID, input)
}

func (m *mockDeps) SaveProfile(ctx context.Context, sessionID string, input backend.ProfileInput) (backend.ProfileResult, error) {
	if m.profileFn == nil {
		return backend.ProfileResult{}, service.ErrNoSession
	}
	return m.profileFn(ctx, sessionID, input)
}

func (m *mockDeps) UploadGait(ctx context.Context, sessionID, filename string, content []byte) (backend.UploadResult, error) {
	if m.uploadFn == nil {
		return backend.UploadResult{}, service.ErrNoSession
	}
	return m.uploadFn(ctx, sessionID, filename, content)
}

func (m *mockDeps) Report(ctx context.Context, sessionID string) (backend.Report, error) {
	if m.reportFn == nil {
		return backend.Report{}, service.ErrNoSession
	}
	return m.reportFn(ctx, sessionID)
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(deps *mockDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, 1024).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestAuthRoutes(t *testing.T) {
	Convey("Given the API with a permissive login", t, func() {
		deps := &mockDeps{
			loginFn: func(_ context.Context, email, password string) (api.LoginView, error) {
				if password != "secret123" {
					return api.LoginView{}, fmt.Errorf("login: %w: %w",
						backend.ErrUnauthorized,
						&backend.APIError{StatusCode: 401, Detail: "Incorrect email or password"})
				}
				return api.LoginView{SessionID: "sess-1", Role: "patient"}, nil
			},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When posting good credentials", func() {
			body := `{"email":"alex@example.com","password":"secret123"}`
			resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the session id is returned and the cookie set", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out struct {
					SessionID string `json:"session_id"`
					Role      string `json:"role"`
				}
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out.SessionID, ShouldEqual, "sess-1")
				So(out.Role, ShouldEqual, "patient")

				var found bool
				for _, c := range resp.Cookies() {
					if c.Name == "gaitway_session" && c.Value == "sess-1" {
						found = true
						So(c.HttpOnly, ShouldBeTrue)
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When posting bad credentials", func() {
			body := `{"email":"alex@example.com","password":"nope-nope"}`
			resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the backend message is surfaced with its status", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
				var out struct {
					Message string `json:"message"`
				}
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out.Message, ShouldEqual, "Incorrect email or password")
			})
		})

		Convey("When posting malformed JSON", func() {
			resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", strings.NewReader("{"))
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When logging out with a bearer session", func() {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/auth/logout", nil)
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the session is revoked and the cookie cleared", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				So(deps.logoutIDs, ShouldResemble, []string{"sess-1"})
			})
		})

		Convey("When registering with a valid form", func() {
			body := `{"full_name":"Alex Rivera","email":"alex@example.com","password":"secret123"}`
			resp, err := http.Post(ts.URL+"/api/auth/register", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
		})

		Convey("When using GET on an auth route", func() {
			resp, err := http.Get(ts.URL + "/api/auth/login")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestDashboardRoute(t *testing.T) {
	Convey("Given the API with a canned dashboard", t, func() {
		score := 90.0
		deps := &mockDeps{
			dashboardFn: func(_ context.Context, sessionID string) (api.DashboardView, error) {
				if sessionID != "sess-1" {
					return api.DashboardView{}, service.ErrNoSession
				}
				return api.DashboardView{
					PatientName: "Alex Rivera",
					HealthScore: &score,
					RiskTier:    "Stable",
					GaugeOffset: 33.9292,
					Alerts:      []string{"Load Imbalance Detected."},
				}, nil
			},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When fetching with a session cookie", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/dashboard", nil)
			req.AddCookie(&http.Cookie{Name: "gaitway_session", Value: "sess-1"})
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the derived view comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out map[string]any
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out["patient_name"], ShouldEqual, "Alex Rivera")
				So(out["risk_tier"], ShouldEqual, "Stable")
				So(out["health_score"], ShouldEqual, 90.0)
			})
		})

		Convey("When fetching without a session", func() {
			resp, err := http.Get(ts.URL + "/api/dashboard")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestCalendarRoute(t *testing.T) {
	Convey("Given the API with a canned calendar", t, func() {
		var gotMonth string
		deps := &mockDeps{
			calendarFn: func(_ context.Context, sessionID, month string) (compliance.Result, error) {
				gotMonth = month
				return compliance.Result{
					Month:         "2026-06",
					DaysInMonth:   30,
					CompliancePct: 40,
					Tiles: []compliance.Tile{
						{Day: 1, State: compliance.Attended},
						{Day: 2, State: compliance.Missed},
						{Day: 3, State: compliance.Future, Today: true},
					},
				}, nil
			},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When fetching a specific month", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/calendar?month=2026-06", nil)
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then tile states are serialized as labels", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(gotMonth, ShouldEqual, "2026-06")
				var out struct {
					Month string `json:"month"`
					Tiles []struct {
						Day   int    `json:"day"`
						State string `json:"state"`
						Today bool   `json:"today"`
					} `json:"tiles"`
					CompliancePct int `json:"compliance_pct"`
				}
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out.Month, ShouldEqual, "2026-06")
				So(out.CompliancePct, ShouldEqual, 40)
				So(out.Tiles[0].State, ShouldEqual, "attended")
				So(out.Tiles[1].State, ShouldEqual, "missed")
				So(out.Tiles[2].State, ShouldEqual, "future")
				So(out.Tiles[2].Today, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRoutes(t *testing.T) {
	Convey("Given the API with a recording submit", t, func() {
		var got model.DailyInput
		deps := &mockDeps{
			submitFn: func(_ context.Context, sessionID string, input model.DailyInput) (backend.DailyResult, error) {
				got = input
				return backend.DailyResult{Message: "Metrics saved", HealthScore: 88}, nil
			},
			latestFn: func(_ context.Context, sessionID string) (model.DailyRecord, error) {
				return model.DailyRecord{Date: "2026-06-10", WalkingSpeedMPS: 1.2}, nil
			},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When submitting a complete form", func() {
			body := `{"walking_speed_mps":1.2,"gait_symmetry_index":0.92,"step_length_cm":64,"cadence_spm":106}`
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/metrics", strings.NewReader(body))
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the submission is forwarded and acknowledged", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(got.WalkingSpeedMPS, ShouldEqual, 1.2)
				So(got.CadenceSPM, ShouldEqual, 106)
			})
		})

		Convey("When submitting a form with a zero core field", func() {
			body := `{"walking_speed_mps":0,"gait_symmetry_index":0.92,"step_length_cm":64,"cadence_spm":106}`
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/metrics", strings.NewReader(body))
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching the latest record", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/metrics/latest", nil)
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			var rec model.DailyRecord
			So(json.NewDecoder(resp.Body).Decode(&rec), ShouldBeNil)
			So(rec.Date, ShouldEqual, "2026-06-10")
		})
	})
}

func TestProfileRoute(t *testing.T) {
	Convey("Given the API with a recording profile save", t, func() {
		var got backend.ProfileInput
		deps := &mockDeps{
			profileFn: func(_ context.Context, sessionID string, input backend.ProfileInput) (backend.ProfileResult, error) {
				if sessionID != "sess-1" {
					return backend.ProfileResult{}, service.ErrNoSession
				}
				got = input
				return backend.ProfileResult{Status: "success", Message: "Profile created successfully"}, nil
			},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When posting a profile with a session", func() {
			body := `{"name":"Alex Rivera","email":"alex@example.com","age":34,"gender":"male","height_cm":178}`
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/profile", strings.NewReader(body))
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the profile reaches the application layer", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(got.Name, ShouldEqual, "Alex Rivera")
				So(got.Age, ShouldEqual, 34)
				So(got.HeightCM, ShouldNotBeNil)
				So(*got.HeightCM, ShouldEqual, 178)
				var out struct {
					Status  string `json:"status"`
					Message string `json:"message"`
				}
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out.Message, ShouldEqual, "Profile created successfully")
			})
		})

		Convey("When posting without a session", func() {
			body := `{"name":"Alex Rivera","email":"alex@example.com","age":34,"gender":"male"}`
			resp, err := http.Post(ts.URL+"/api/profile", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When posting malformed JSON", func() {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/profile", strings.NewReader("{"))
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using GET", func() {
			resp, err := http.Get(ts.URL + "/api/profile")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestUploadRoute(t *testing.T) {
	Convey("Given the API with a recording upload", t, func() {
		var gotName string
		var gotContent []byte
		deps := &mockDeps{
			uploadFn: func(_ context.Context, sessionID, filename string, content []byte) (backend.UploadResult, error) {
				gotName = filename
				gotContent = content
				return backend.UploadResult{Message: "Upload received", RecordID: "rec-1"}, nil
			},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		postFile := func(name string, content []byte) *http.Response {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			fw, err := mw.CreateFormFile("file", name)
			So(err, ShouldBeNil)
			_, err = fw.Write(content)
			So(err, ShouldBeNil)
			So(mw.Close(), ShouldBeNil)

			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/uploads/gait", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			return resp
		}

		Convey("When uploading a small CSV", func() {
			resp := postFile("gait.csv", []byte("t,speed\n0,1.2\n"))
			defer resp.Body.Close()

			Convey("Then the file reaches the application layer", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(gotName, ShouldEqual, "gait.csv")
				So(string(gotContent), ShouldContainSubstring, "speed")
			})
		})

		Convey("When the file field is missing", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			So(mw.WriteField("note", "no file here"), ShouldBeNil)
			So(mw.Close(), ShouldBeNil)

			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/uploads/gait", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the upload exceeds the size cap", func() {
			resp := postFile("gait.csv", bytes.Repeat([]byte("x"), 4096))
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}

func TestReportRoute(t *testing.T) {
	Convey("Given the API with a canned report", t, func() {
		deps := &mockDeps{
			reportFn: func(_ context.Context, sessionID string) (backend.Report, error) {
				return backend.Report{Content: []byte("%PDF-1.4 report"), ContentType: "application/pdf"}, nil
			},
		}
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When downloading the report", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/report", nil)
			req.Header.Set("Authorization", "Bearer sess-1")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the PDF streams through with download headers", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldEqual, "application/pdf")
				So(resp.Header.Get("Content-Disposition"), ShouldContainSubstring, "gait_report.pdf")
			})
		})
	})
}

func TestHealthRoute(t *testing.T) {
	Convey("Given the API", t, func() {
		ts := newTestServer(&mockDeps{})
		defer ts.Close()

		Convey("When probing /healthz", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When fetching /api/stats", func() {
			resp, err := http.Get(ts.URL + "/api/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}
