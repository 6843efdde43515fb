// Package ocr recognizes text in binarized regions with Tesseract.
package ocr

import "github.com/otiai10/gosseract/v2"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPageSegMode overrides the single line segmentation mode.
func WithPageSegMode(mode gosseract.PageSegMode) Option {
	return func(e *Engine) {
		e.psm = mode
	}
}

// WithDictionary enables Tesseract word lists. Nicknames are rarely
// dictionary words so they are off by default.
func WithDictionary(enabled bool) Option {
	return func(e *Engine) {
		e.dictionary = enabled
	}
}
