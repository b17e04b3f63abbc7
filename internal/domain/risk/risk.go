// Package risk maps prosthetic health scores to clinical risk tiers.
package risk

import "github.com/kinetiq/gaitway/internal/domain/model"

// Tier thresholds over the 0-100 health score scale.
const (
	stableThreshold   = 85.0
	moderateThreshold = 60.0
)

// Gauge geometry: circumference of the SVG arc the UI draws (radius 54).
const fullArcLength = 339.292

// Pressure distribution below this ratio indicates a load imbalance.
const pressureImbalanceThreshold = 0.6

// Tier is the risk classification derived from a health score.
type Tier int

const (
	Stable Tier = iota
	ModerateRisk
	HighRisk
)

// String returns the display label for the tier.
func (t Tier) String() string {
	switch t {
	case Stable:
		return "Stable"
	case ModerateRisk:
		return "Moderate Risk"
	case HighRisk:
		return "High Risk"
	default:
		return "Unknown"
	}
}

// TierOf classifies a health score. Total over all reals; callers substitute
// 0 when the upstream score is absent.
func TierOf(score float64) Tier {
	switch {
	case score >= stableThreshold:
		return Stable
	case score >= moderateThreshold:
		return ModerateRisk
	default:
		return HighRisk
	}
}

// GaugeOffset returns the stroke-dash offset for the score gauge arc.
// The score is clamped to [0,100] so out-of-range inputs never produce a
// negative or over-full arc.
func GaugeOffset(score float64) float64 {
	score = Clamp(score)
	return fullArcLength * (1 - score/100)
}

// Clamp bounds a health score to the 0-100 domain.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Alerts derives the recent-alert lines for a snapshot. The upstream payload
// already carries alerts; this recomputes them locally so a sparse payload
// still surfaces the ones the latest record implies.
func Alerts(snap model.DashboardSnapshot) []string {
	alerts := make([]string, 0, 3)
	if snap.GaitAbnormality == "Abnormal" {
		alerts = append(alerts, "Significant gait abnormality detected.")
	}
	if snap.SkinRisk == "High" {
		alerts = append(alerts, "High risk of skin irritation. Check socket fit.")
	}
	if n := len(snap.Trends.PressureDistribution); n > 0 {
		if snap.Trends.PressureDistribution[n-1] < pressureImbalanceThreshold {
			alerts = append(alerts, "Load Imbalance Detected.")
		}
	}
	return alerts
}
