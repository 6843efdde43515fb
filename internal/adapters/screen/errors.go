package screen

import "errors"

// Sentinel kinds for capture errors.
var (
	ErrNoDisplay = errors.New("no active display")
	ErrTimeout   = errors.New("region capture timed out")
)
