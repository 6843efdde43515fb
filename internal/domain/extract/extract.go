// Package extract reads text out of captured regions with an ordered list of
// preprocessing and recognition attempts.
package extract

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
	"github.com/ravushimo/gunsmoke-scanner/pkg/metrics"
)

// DigitAllowlist restricts recognition to score characters.
const DigitAllowlist = "0123456789,"

// Mode selects the binarization strategy.
type Mode int

const (
	// ModeAdaptive uses local Gaussian weighted thresholds.
	ModeAdaptive Mode = iota
	// ModeFixed uses a single global cutoff.
	ModeFixed
)

func (m Mode) String() string {
	switch m {
	case ModeAdaptive:
		return "adaptive"
	case ModeFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Preprocessor turns captured pixels into a binary image.
type Preprocessor interface {
	Preprocess(img image.Image, mode Mode) (*image.Gray, error)
}

// Engine recognizes text fragments in reading order.
// An empty allowlist means unrestricted text.
type Engine interface {
	ReadText(ctx context.Context, img *image.Gray, allowlist string) ([]string, error)
}

// Attempt is one preprocessing and recognition pass.
type Attempt struct {
	Mode      Mode
	Allowlist string
}

// DigitAttempts retries a blank adaptive read once with the fixed threshold.
func DigitAttempts() []Attempt {
	return []Attempt{
		{Mode: ModeAdaptive, Allowlist: DigitAllowlist},
		{Mode: ModeFixed, Allowlist: DigitAllowlist},
	}
}

// TextAttempts never retries.
func TextAttempts() []Attempt {
	return []Attempt{{Mode: ModeAdaptive}}
}

// Extractor runs attempts until one yields non-blank text.
type Extractor struct {
	pre    Preprocessor
	engine Engine
	digits []Attempt
	text   []Attempt
	logger logger.Logger
}

// New creates an extractor over a preprocessor and an engine.
func New(pre Preprocessor, engine Engine, opts ...Option) *Extractor {
	e := &Extractor{
		pre:    pre,
		engine: engine,
		digits: DigitAttempts(),
		text:   TextAttempts(),
		logger: logger.Get().Named("extract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the trimmed concatenation of recognized fragments, or "" when
// img is nil, every attempt comes back blank, or anything fails.
func (e *Extractor) Extract(ctx context.Context, img image.Image, wantDigits bool) (text string) {
	if img == nil {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordOCRError()
			e.logger.Warn(ctx, "ocr panicked", logger.Any("panic", r))
			text = ""
		}
	}()

	attempts := e.text
	if wantDigits {
		attempts = e.digits
	}

	for i, a := range attempts {
		if i > 0 {
			metrics.RecordOCRFallback()
		}
		out, err := e.run(ctx, img, a)
		if err != nil {
			metrics.RecordOCRError()
			e.logger.Debug(ctx, "ocr attempt failed",
				logger.String("mode", a.Mode.String()),
				logger.Error(err))
			return ""
		}
		if out != "" {
			return out
		}
	}
	return ""
}

func (e *Extractor) run(ctx context.Context, img image.Image, a Attempt) (string, error) {
	bin, err := e.pre.Preprocess(img, a.Mode)
	if err != nil {
		return "", fmt.Errorf("preprocess %s: %w", a.Mode, err)
	}

	start := time.Now()
	fragments, err := e.engine.ReadText(ctx, bin, a.Allowlist)
	metrics.RecordOCRAttempt(a.Mode.String(), float64(time.Since(start).Milliseconds()))
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return strings.TrimSpace(strings.Join(fragments, "")), nil
}
