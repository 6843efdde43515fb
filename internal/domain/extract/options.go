package extract

import "github.com/ravushimo/gunsmoke-scanner/pkg/logger"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithDigitAttempts replaces the attempt list used for score fields.
func WithDigitAttempts(attempts ...Attempt) Option {
	return func(e *Extractor) {
		if len(attempts) > 0 {
			e.digits = attempts
		}
	}
}

// WithTextAttempts replaces the attempt list used for free text.
func WithTextAttempts(attempts ...Attempt) Option {
	return func(e *Extractor) {
		if len(attempts) > 0 {
			e.text = attempts
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}
