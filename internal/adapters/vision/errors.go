package vision

import "errors"

// Sentinel kinds for preprocessing errors.
var (
	ErrEmptyImage = errors.New("empty image")
	ErrNotGray    = errors.New("preprocessed image is not single channel")
)
