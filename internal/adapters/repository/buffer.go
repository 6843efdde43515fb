package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/dedupe"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/normalize"
	"github.com/ravushimo/gunsmoke-scanner/pkg/metrics"
)

// BufferStore is an in-memory Store. Appends wait for readers to finish.
type BufferStore struct {
	mu      sync.RWMutex
	records []Record
}

var _ Store = (*BufferStore)(nil)

// NewBufferStore creates an empty buffer.
func NewBufferStore(opts ...Option) *BufferStore {
	s := &BufferStore{}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateBufferSize(0)
	return s
}

// Commit runs merge under the write lock so the dedup view and the append
// cannot interleave with another writer.
func (s *BufferStore) Commit(_ context.Context, merge Merge) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := merge(s.records)
	s.records = append(s.records, added...)
	metrics.UpdateBufferSize(len(s.records))
	return added
}

// Records returns a copy of the buffer.
func (s *BufferStore) Records(_ context.Context) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}

// Update replaces the record at index after validating it.
func (s *BufferStore) Update(_ context.Context, index int, r Record) error {
	if err := Validate(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return ErrNotFound
	}
	s.records[index] = r
	return nil
}

// Clear empties the buffer.
func (s *BufferStore) Clear(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	s.records = nil
	metrics.UpdateBufferSize(0)
	return n
}

// Count returns the number of buffered records.
func (s *BufferStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Export keeps the first capture of each nickname, orders by total score
// descending and ranks from 1. Equal totals keep capture order.
func (s *BufferStore) Export(ctx context.Context) []Ranked {
	return Rank(s.Records(ctx))
}

// Rank builds an export snapshot from records in capture order.
func Rank(records []Record) []Ranked {
	unique := dedupe.KeepFirst(records)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].TotalScore > unique[j].TotalScore
	})

	out := make([]Ranked, len(unique))
	for i, r := range unique {
		out[i] = Ranked{Rank: i + 1, PlayerRecord: r}
	}
	return out
}

// Validate checks the invariants of an edited record. The IGN must already
// be in the form CleanNickname produces.
func Validate(r Record) error {
	if r.Season < 1 || r.IGN == "" || r.TopScore < 0 || r.TotalScore < 0 {
		return ErrInvalidRecord
	}
	if normalize.CleanNickname(r.IGN) != r.IGN {
		return ErrInvalidRecord
	}
	return nil
}
