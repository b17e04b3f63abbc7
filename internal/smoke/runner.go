// Package smoke drives a live gateway end to end with synthetic patient
// traffic: register, log in, submit a run of daily metrics, then read the
// dashboard and calendar back. It exists for manual verification against a
// running stack, not for CI.
package smoke

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"
)

const healthPath = "/healthz"

type loginResponse struct {
	SessionID    string `json:"session_id"`
	Role         string `json:"role"`
	NeedsProfile bool   `json:"needs_profile"`
}

type dashboardResponse struct {
	PatientName string   `json:"patient_name"`
	HealthScore *float64 `json:"health_score"`
	RiskTier    string   `json:"risk_tier"`
	Alerts      []string `json:"alerts"`
}

type calendarResponse struct {
	Month         string `json:"month"`
	AttendedCount int    `json:"attended_count"`
	CompliancePct int    `json:"compliance_pct"`
}

// Run executes the full smoke pass and prints a summary.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{Started: time.Now()}
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout)

	if err := checkHealth(ctx, client); err != nil {
		return err
	}

	// Registration may 4xx when the account already exists; that is fine
	// for repeat runs.
	resp, err := client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"full_name": config.FullName,
			"email":     config.Email,
			"password":  config.Password,
		}).
		Post("/api/auth/register")
	if err != nil {
		return fmt.Errorf("register request failed: %w", err)
	}
	stats.Registered = resp.IsSuccess()

	var login loginResponse
	resp, err = client.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": config.Email, "password": config.Password}).
		SetResult(&login).
		Post("/api/auth/login")
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("login rejected: %s", resp.Status())
	}
	client.SetAuthToken(login.SessionID)
	logf(config, "logged in as %s (role=%s)", config.Email, login.Role)

	submitDays(ctx, config, client, stats)

	var dash dashboardResponse
	resp, err = client.R().SetContext(ctx).SetResult(&dash).Get("/api/dashboard")
	if err != nil || !resp.IsSuccess() {
		return fmt.Errorf("dashboard fetch failed: %v (%s)", err, resp.Status())
	}
	logf(config, "dashboard: patient=%q tier=%q alerts=%d", dash.PatientName, dash.RiskTier, len(dash.Alerts))

	var cal calendarResponse
	resp, err = client.R().SetContext(ctx).SetResult(&cal).Get("/api/calendar")
	if err != nil || !resp.IsSuccess() {
		return fmt.Errorf("calendar fetch failed: %v (%s)", err, resp.Status())
	}

	resp, err = client.R().SetContext(ctx).Post("/api/auth/logout")
	if err != nil || !resp.IsSuccess() {
		return fmt.Errorf("logout failed: %v (%s)", err, resp.Status())
	}

	stats.Finished = time.Now()
	fmt.Printf("\nSmoke run complete in %s\n", stats.Finished.Sub(stats.Started).Round(time.Millisecond))
	fmt.Printf("  registered new account: %v\n", stats.Registered)
	fmt.Printf("  submissions: %d ok, %d failed\n", stats.Submitted, stats.SubmitErrors)
	fmt.Printf("  calendar %s: %d attended, %d%% compliance\n", cal.Month, cal.AttendedCount, cal.CompliancePct)
	if stats.SubmitErrors > 0 {
		return fmt.Errorf("%d of %d submissions failed", stats.SubmitErrors, config.Days)
	}
	return nil
}

// submitDays posts one synthetic metrics form per configured day. Values sit
// in plausible clinical ranges so backend scoring stays realistic.
func submitDays(ctx context.Context, config *Config, client *resty.Client, stats *Stats) {
	for i := 0; i < config.Days; i++ {
		input := map[string]float64{
			"walking_speed_mps":           0.9 + rand.Float64()*0.5,
			"gait_symmetry_index":         0.75 + rand.Float64()*0.2,
			"step_length_cm":              55 + rand.Float64()*15,
			"cadence_spm":                 95 + rand.Float64()*20,
			"skin_temperature_c":          31 + rand.Float64()*3,
			"skin_moisture":               0.3 + rand.Float64()*0.4,
			"pressure_distribution_index": 0.5 + rand.Float64()*0.5,
			"daily_wear_hours":            6 + rand.Float64()*8,
		}
		resp, err := client.R().SetContext(ctx).SetBody(input).Post("/api/metrics")
		if err != nil || !resp.IsSuccess() {
			stats.SubmitErrors++
			logf(config, "submission %d failed: %v (%s)", i+1, err, resp.Status())
			continue
		}
		stats.Submitted++
	}
}

func checkHealth(ctx context.Context, client *resty.Client) error {
	resp, err := client.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("gateway unhealthy: %s", resp.Status())
	}
	return nil
}

func logf(config *Config, format string, args ...any) {
	if config.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}
