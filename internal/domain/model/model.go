// Package model contains domain models passed between layers.
package model

// DashboardSnapshot is the upstream dashboard payload for one patient.
// Read-only; it lives for a single view render.
type DashboardSnapshot struct {
	PatientName       string   `json:"patient_name"`
	LatestHealthScore *float64 `json:"latest_health_score"`
	Analysis          string   `json:"analysis,omitempty"`
	GaitAbnormality   string   `json:"gait_abnormality"`
	SkinRisk          string   `json:"skin_risk"`
	Trends            Trends   `json:"trends"`
	RecentAlerts      []string `json:"recent_alerts"`
}

// Trends holds aligned trailing-window series ending today. Sequences may be
// absent or empty; alignment across series is assumed, not validated.
type Trends struct {
	HealthScore          []float64 `json:"health_score"`
	Symmetry             []float64 `json:"symmetry"`
	WalkingSpeed         []float64 `json:"walking_speed"`
	SkinTemp             []float64 `json:"skin_temp"`
	Moisture             []float64 `json:"moisture"`
	PressureDistribution []float64 `json:"pressure_distribution"`
}

// DailyRecord is one day of prosthetic gait metrics as stored upstream.
type DailyRecord struct {
	ID                    string  `json:"id,omitempty"`
	Date                  string  `json:"date"` // YYYY-MM-DD
	WalkingSpeedMPS       float64 `json:"walking_speed_mps"`
	GaitSymmetryIndex     float64 `json:"gait_symmetry_index"`
	StepLengthCM          float64 `json:"step_length_cm"`
	CadenceSPM            float64 `json:"cadence_spm"`
	SkinTemperatureC      float64 `json:"skin_temperature_c,omitempty"`
	SkinMoisture          float64 `json:"skin_moisture,omitempty"`
	PressureDistribution  float64 `json:"pressure_distribution_index,omitempty"`
	ProstheticHealthScore float64 `json:"prosthetic_health_score,omitempty"`
}

// Valid reports whether the record counts as an attended day: all four core
// gait fields must be strictly positive.
func (r DailyRecord) Valid() bool {
	return r.WalkingSpeedMPS > 0 &&
		r.GaitSymmetryIndex > 0 &&
		r.StepLengthCM > 0 &&
		r.CadenceSPM > 0
}

// DailyInput is the self-reported daily metrics submission.
type DailyInput struct {
	StepLengthCM         float64 `json:"step_length_cm"`
	CadenceSPM           float64 `json:"cadence_spm"`
	WalkingSpeedMPS      float64 `json:"walking_speed_mps"`
	GaitSymmetryIndex    float64 `json:"gait_symmetry_index"`
	SkinTemperatureC     float64 `json:"skin_temperature_c"`
	SkinMoisture         float64 `json:"skin_moisture"`
	PressureDistribution float64 `json:"pressure_distribution_index"`
	DailyWearHours       float64 `json:"daily_wear_hours"`
}
