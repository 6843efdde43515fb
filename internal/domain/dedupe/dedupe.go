// Package dedupe filters repeated players out of capture batches.
package dedupe

import "github.com/ravushimo/gunsmoke-scanner/internal/domain/model"

// DefaultWindow is the number of trailing records a batch is checked against.
const DefaultWindow = 20

// Deduper drops batch entries whose nickname was captured recently.
// The same player tends to stay on screen across consecutive samples and
// must not be counted twice.
type Deduper struct {
	window int
}

// New creates a deduper with the default window.
func New(opts ...Option) *Deduper {
	d := &Deduper{window: DefaultWindow}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Window returns the configured window; non-positive means unbounded.
func (d *Deduper) Window() int {
	return d.window
}

// Filter splits batch into entries to keep and entries already present in the
// trailing window of history. Only exact nickname matches count. Entries are
// not compared with each other, and order is preserved.
func (d *Deduper) Filter(history, batch []model.PlayerRecord) ([]model.PlayerRecord, []model.PlayerRecord) {
	recent := history
	if d.window > 0 && len(recent) > d.window {
		recent = recent[len(recent)-d.window:]
	}

	seen := make(map[string]struct{}, len(recent))
	for _, r := range recent {
		seen[r.IGN] = struct{}{}
	}

	kept := make([]model.PlayerRecord, 0, len(batch))
	var dropped []model.PlayerRecord
	for _, r := range batch {
		if _, ok := seen[r.IGN]; ok {
			dropped = append(dropped, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}

// KeepFirst returns records with later repeats of a nickname removed.
// The earliest capture wins regardless of score.
func KeepFirst(records []model.PlayerRecord) []model.PlayerRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]model.PlayerRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.IGN]; ok {
			continue
		}
		seen[r.IGN] = struct{}{}
		out = append(out, r)
	}
	return out
}
