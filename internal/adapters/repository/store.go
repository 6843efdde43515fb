// Package repository holds the capture buffer and its export contract.
package repository

import (
	"context"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
)

// Record is one buffered player row.
type Record = model.PlayerRecord

// Ranked is one row of an export snapshot.
type Ranked = model.RankedRecord

// Merge receives the current buffer and returns the entries to append.
type Merge = func(history []Record) []Record

// Store provides read/write access to the capture buffer.
type Store interface {
	// Commit runs merge against the buffer and appends its result as one step.
	// Returns the appended records.
	Commit(ctx context.Context, merge Merge) []Record

	// Records returns a copy of the buffer in capture order.
	Records(ctx context.Context) []Record

	// Update replaces the record at index.
	// Returns ErrNotFound for an index outside the buffer.
	Update(ctx context.Context, index int, r Record) error

	// Clear empties the buffer and returns how many records were removed.
	Clear(ctx context.Context) int

	// Count returns the number of buffered records.
	Count(ctx context.Context) int

	// Export returns the ranked snapshot without touching the buffer.
	Export(ctx context.Context) []Ranked
}
