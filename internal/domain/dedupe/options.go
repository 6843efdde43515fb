// Package dedupe filters repeated players out of capture batches.
package dedupe

// Option applies a configuration option to the Deduper.
type Option func(*Deduper)

// WithWindow sets how many of the most recent buffer records are checked.
// If window > 0: only that many trailing records are compared.
// If window <= 0: the whole buffer is compared.
func WithWindow(window int) Option {
	return func(d *Deduper) {
		d.window = window
	}
}
