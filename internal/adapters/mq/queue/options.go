// Package queue holds capture jobs between the trigger surface and workers.
package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of pending jobs.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithDropHandler sets a callback for accepted jobs that are discarded
// without reaching a worker: a dequeue cancelled mid-handoff or Drain.
func WithDropHandler(fn func(Job)) Option {
	return func(q *InMemoryQueue) {
		if fn != nil {
			q.onDrop = fn
		}
	}
}
