package pipeline

import "errors"

// Sentinel kinds for capture cycle errors.
var (
	ErrBusy           = errors.New("capture already in progress")
	ErrSeasonInactive = errors.New("season is on break")
)
