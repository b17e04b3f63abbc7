// Package compliance computes month-to-date attendance compliance from
// sparse daily metric records.
package compliance

import (
	"fmt"
	"math"
	"time"

	"github.com/kinetiq/gaitway/internal/domain/model"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"
	daysPerWeek = 7
)

// DayState classifies a calendar tile.
type DayState int

const (
	// Attended: a valid daily record exists for the day.
	Attended DayState = iota
	// Missed: the day is in the past and has no valid record.
	Missed
	// Future: the day is not yet due.
	Future
)

// String returns the tile state label used by the UI.
func (s DayState) String() string {
	switch s {
	case Attended:
		return "attended"
	case Missed:
		return "missed"
	case Future:
		return "future"
	default:
		return "unknown"
	}
}

// Tile is one calendar day cell.
type Tile struct {
	Day   int      `json:"day"`
	State DayState `json:"-"`
	Today bool     `json:"today"`
}

// Result is the computed calendar view for one month.
type Result struct {
	Month         string
	DaysInMonth   int
	LeadingBlanks int // blank cells before day 1 in a Monday-start grid
	Attendance    map[string]bool
	AttendedCount int
	CompliancePct int
	Tiles         []Tile
}

// Attend builds the attendance map from a record sequence: a date is attended
// when at least one valid record exists for it, regardless of which month the
// date falls in.
func Attend(records []model.DailyRecord) map[string]bool {
	attendance := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Valid() {
			attendance[r.Date] = true
		}
	}
	return attendance
}

// Compute derives the calendar compliance view for month (YYYY-MM) as of
// today. Compliance is month-to-date: days after today never join the
// denominator. A nil or empty record set is a legal input and yields zero
// compliance over the due days; upstream fetch failures degrade to that.
func Compute(records []model.DailyRecord, month string, today time.Time) (Result, error) {
	first, err := time.Parse(monthLayout, month)
	if err != nil {
		return Result{}, fmt.Errorf("invalid month %q: %w", month, err)
	}

	daysInMonth := first.AddDate(0, 1, -1).Day()
	// time.Weekday starts on Sunday; the grid starts on Monday.
	leadingBlanks := (int(first.Weekday()) + daysPerWeek - 1) % daysPerWeek

	attendance := Attend(records)

	// dueDay is the last day that counts toward the denominator: today's day
	// for the current month, every day for past months, none for future ones.
	dueDay := dueDayFor(first, daysInMonth, today)
	currentDay := 0
	if sameMonth(first, today) {
		currentDay = today.Day()
	}

	res := Result{
		Month:         month,
		DaysInMonth:   daysInMonth,
		LeadingBlanks: leadingBlanks,
		Attendance:    attendance,
		Tiles:         make([]Tile, 0, daysInMonth),
	}

	for day := 1; day <= daysInMonth; day++ {
		date := first.AddDate(0, 0, day-1).Format(dateLayout)
		tile := Tile{Day: day, Today: day == currentDay && currentDay > 0}
		switch {
		case attendance[date]:
			tile.State = Attended
			if day <= dueDay {
				res.AttendedCount++
			}
		case day < dueDay || (day == dueDay && !tile.Today):
			tile.State = Missed
		default:
			tile.State = Future
		}
		res.Tiles = append(res.Tiles, tile)
	}

	if dueDay > 0 {
		res.CompliancePct = int(math.Round(float64(res.AttendedCount) / float64(dueDay) * 100))
	}
	return res, nil
}

func sameMonth(first, today time.Time) bool {
	return first.Year() == today.Year() && first.Month() == today.Month()
}

func dueDayFor(first time.Time, daysInMonth int, today time.Time) int {
	if sameMonth(first, today) {
		return today.Day()
	}
	if first.Before(today) {
		return daysInMonth
	}
	return 0
}
