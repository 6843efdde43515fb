// Package season computes the competitive period a date falls in.
//
// Periods repeat every 21 days: 7 active days followed by 14 days of break.
// The timeline is anchored so that 2025-11-30 is the first day of season 17.
package season

import "time"

// Cycle constants.
const (
	AnchorNumber = 17
	CycleDays    = 21
	ActiveDays   = 7
)

// Anchor is day 0 of season AnchorNumber.
var Anchor = time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // fixed anchor

const day = 24 * time.Hour

// Phase is the part of a cycle a date falls in.
type Phase string

const (
	PhaseActive Phase = "active"
	PhaseBreak  Phase = "break"
)

// Period describes a season and where a date sits in it.
type Period struct {
	Number int       `json:"number"`
	Phase  Phase     `json:"phase"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Manual bool      `json:"manual"`
}

// CurrentPeriod returns the season number and phase for the calendar date of now.
// Dates after the anchor count whole cycles down; dates before it round the
// cycle count up so the anchor day is always day 0 of its cycle.
func CurrentPeriod(now time.Time) (int, Phase) {
	date := civilDate(now)

	var number, dayInCycle int
	if !date.Before(Anchor) {
		days := daysBetween(Anchor, date)
		number = AnchorNumber + days/CycleDays
		dayInCycle = days % CycleDays
	} else {
		daysBefore := daysBetween(date, Anchor)
		cyclesBefore := (daysBefore + CycleDays - 1) / CycleDays
		cycleStart := Anchor.AddDate(0, 0, -cyclesBefore*CycleDays)
		number = AnchorNumber - cyclesBefore
		dayInCycle = daysBetween(cycleStart, date) % CycleDays
	}

	if dayInCycle < ActiveDays {
		return number, PhaseActive
	}
	return number, PhaseBreak
}

// DatesFor returns the first and last active day of season number.
func DatesFor(number int) (time.Time, time.Time) {
	start := Anchor.AddDate(0, 0, (number-AnchorNumber)*CycleDays)
	return start, start.AddDate(0, 0, ActiveDays-1)
}

// Describe builds the full Period for now.
func Describe(now time.Time) Period {
	number, phase := CurrentPeriod(now)
	start, end := DatesFor(number)
	return Period{Number: number, Phase: phase, Start: start, End: end}
}

// civilDate drops the clock part of t, keeping its local calendar date.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / day)
}
