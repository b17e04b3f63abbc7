// Package trend reshapes upstream trend series into chart-ready records.
package trend

import (
	"time"

	"github.com/kinetiq/gaitway/internal/domain/model"
)

const dateLayout = "2006-01-02"

// Point is one chart record of the gait series.
type Point struct {
	Date        string  `json:"date"`
	SymmetryPct float64 `json:"symmetry_pct"`
	Speed       float64 `json:"speed"`
}

// HealthPoint is one chart record of the health-score series.
type HealthPoint struct {
	Date        string  `json:"date"`
	HealthScore float64 `json:"health_score"`
}

// NormalizeSymmetry converts a symmetry value to a 0-100 percentage. Upstream
// history mixes 0-1 ratios with pre-scaled percentages; values at or below 1
// are treated as ratios. Applied uniformly to every series element.
func NormalizeSymmetry(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return v
}

// Reshape anchors the symmetry/speed series so index N-1 is today and index 0
// is N-1 days ago. Series alignment is assumed, not validated: when the speed
// series is shorter than the symmetry series the surplus records carry a zero
// speed. That mirrors the upstream contract; it is a known limitation, not
// something to silently repair here.
func Reshape(trends model.Trends, today time.Time) []Point {
	n := len(trends.Symmetry)
	if n == 0 {
		return nil
	}
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		p := Point{
			Date:        dateFor(today, n, i),
			SymmetryPct: NormalizeSymmetry(trends.Symmetry[i]),
		}
		if i < len(trends.WalkingSpeed) {
			p.Speed = trends.WalkingSpeed[i]
		}
		points[i] = p
	}
	return points
}

// HealthSeries derives {date, health_score} records from the health-score
// series using the same trailing-window anchoring as Reshape.
func HealthSeries(trends model.Trends, today time.Time) []HealthPoint {
	n := len(trends.HealthScore)
	if n == 0 {
		return nil
	}
	points := make([]HealthPoint, n)
	for i := 0; i < n; i++ {
		points[i] = HealthPoint{
			Date:        dateFor(today, n, i),
			HealthScore: trends.HealthScore[i],
		}
	}
	return points
}

func dateFor(today time.Time, n, i int) string {
	return today.AddDate(0, 0, -(n - 1 - i)).Format(dateLayout)
}
