// Package pipeline drives capture cycles over the configured leaderboard rows.
package pipeline

import (
	"time"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/dedupe"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithMinNicknameLength sets the shortest accepted nickname in characters.
func WithMinNicknameLength(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.minNickname = n
		}
	}
}

// WithMinTotalScore drops rows whose total is below n.
func WithMinTotalScore(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.minTotal = n
		}
	}
}

// WithDeduper sets the batch filter.
func WithDeduper(d *dedupe.Deduper) Option {
	return func(o *Orchestrator) {
		if d != nil {
			o.deduper = d
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}
