package layoutcheck

import "github.com/ravushimo/gunsmoke-scanner/pkg/logger"

// Option configures a Checker.
type Option func(*Checker)

// WithOutputDir sets where region images are saved.
func WithOutputDir(dir string) Option {
	return func(c *Checker) {
		if dir != "" {
			c.dir = dir
		}
	}
}

// WithMinCoverage sets the content percentage below which a region is blank.
func WithMinCoverage(percent float64) Option {
	return func(c *Checker) {
		if percent >= 0 {
			c.minCoverage = percent
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}
