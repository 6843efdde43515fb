package ocr

import "errors"

// Sentinel kinds for recognition errors.
var (
	ErrNoLanguages = errors.New("no supported ocr languages")
	ErrClosed      = errors.New("ocr engine closed")
)
