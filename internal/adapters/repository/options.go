// Package repository holds the capture buffer and its export contract.
package repository

// Option applies a configuration option to the BufferStore.
type Option func(*BufferStore)

// WithCapacity preallocates room for the expected session size.
func WithCapacity(capacity int) Option {
	return func(s *BufferStore) {
		if capacity > 0 {
			s.records = make([]Record, 0, capacity)
		}
	}
}
