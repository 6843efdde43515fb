// Package vision binarizes captured regions with OpenCV before recognition.
package vision

// Option applies a configuration option to the Preprocessor.
type Option func(*Preprocessor)

// WithThreshold sets the global cutoff used in fixed mode.
func WithThreshold(threshold int) Option {
	return func(p *Preprocessor) {
		if threshold >= 0 && threshold <= maxValue {
			p.threshold = threshold
		}
	}
}

// WithCloseKernel sets the rows and columns of the closing kernel.
func WithCloseKernel(rows, cols int) Option {
	return func(p *Preprocessor) {
		if rows > 0 && cols > 0 {
			p.kernelRows, p.kernelCols = rows, cols
		}
	}
}
