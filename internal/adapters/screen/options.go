// Package screen grabs rectangular regions of the live screen.
package screen

import (
	"time"

	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
)

// Option applies a configuration option to the Capturer.
type Option func(*Capturer)

// WithTimeout bounds a single region grab. Non-positive disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Capturer) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Capturer) {
		if l != nil {
			c.logger = l
		}
	}
}
