package season

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidSeason is returned for season numbers below 1.
var ErrInvalidSeason = errors.New("season number must be positive")

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// Tracker reports the current season and holds an operator override.
type Tracker struct {
	mu     sync.RWMutex
	manual int
	now    func() time.Time
}

// NewTracker creates a tracker without a manual override.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Current returns the season for the tracker's clock.
// A manual override keeps its number and is always treated as active.
func (t *Tracker) Current() Period {
	t.mu.RLock()
	manual := t.manual
	t.mu.RUnlock()

	if manual > 0 {
		start, end := DatesFor(manual)
		return Period{Number: manual, Phase: PhaseActive, Start: start, End: end, Manual: true}
	}
	return Describe(t.now())
}

// SetManual pins the season number.
func (t *Tracker) SetManual(number int) error {
	if number < 1 {
		return ErrInvalidSeason
	}
	t.mu.Lock()
	t.manual = number
	t.mu.Unlock()
	return nil
}

// ClearManual returns to the computed season.
func (t *Tracker) ClearManual() {
	t.mu.Lock()
	t.manual = 0
	t.mu.Unlock()
}
