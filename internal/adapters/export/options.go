// Package export writes ranked snapshots as CSV files.
package export

import "time"

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithDir sets the output directory.
func WithDir(dir string) Option {
	return func(w *Writer) {
		if dir != "" {
			w.dir = dir
		}
	}
}

// WithPrefix sets the file name prefix.
func WithPrefix(prefix string) Option {
	return func(w *Writer) {
		if prefix != "" {
			w.prefix = prefix
		}
	}
}

// WithGuildRank adds a guildrank column carrying value on the first row.
func WithGuildRank(value string) Option {
	return func(w *Writer) {
		w.guildRank = value
	}
}

// WithClock replaces the wall clock used for file names.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}
