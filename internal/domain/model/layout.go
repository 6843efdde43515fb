// Package model contains domain models passed between layers.
package model

import "image"

// RowsPerCapture is the fixed number of leaderboard rows sampled per cycle.
const RowsPerCapture = 5

// ScreenRegion is a pixel rectangle in screen space.
type ScreenRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the region as an image rectangle.
func (r ScreenRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// FieldRole identifies which column of a leaderboard row a region holds.
type FieldRole int

const (
	FieldNickname FieldRole = iota
	FieldSingleHigh
	FieldTotalScore
)

// Roles lists every field role in capture order.
var Roles = [...]FieldRole{FieldNickname, FieldSingleHigh, FieldTotalScore} //nolint:gochecknoglobals // fixed enumeration

func (f FieldRole) String() string {
	switch f {
	case FieldNickname:
		return "nickname"
	case FieldSingleHigh:
		return "single_high"
	case FieldTotalScore:
		return "total_score"
	default:
		return "unknown"
	}
}

// Digits reports whether the field holds a score.
func (f FieldRole) Digits() bool {
	return f == FieldSingleHigh || f == FieldTotalScore
}

// RowConfig holds the three regions of one leaderboard row.
type RowConfig struct {
	Nickname   ScreenRegion `json:"nickname"`
	SingleHigh ScreenRegion `json:"single_high"`
	TotalScore ScreenRegion `json:"total_score"`
}

// Region returns the region configured for role.
func (r RowConfig) Region(role FieldRole) ScreenRegion {
	switch role {
	case FieldSingleHigh:
		return r.SingleHigh
	case FieldTotalScore:
		return r.TotalScore
	default:
		return r.Nickname
	}
}

// Layout is the full capture layout of one leaderboard snapshot.
type Layout [RowsPerCapture]RowConfig
