// Package screen grabs rectangular regions of the live screen.
package screen

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
)

// DefaultTimeout bounds a single region grab.
const DefaultTimeout = 2 * time.Second

// Backend reads pixels from a screen.
type Backend interface {
	Bounds() image.Rectangle
	Grab(rect image.Rectangle) (*image.RGBA, error)
}

// Clamp intersects region with the screen [0,w) x [0,h). The second result is
// false when the region is degenerate or lies entirely off screen.
func Clamp(region model.ScreenRegion, w, h int) (image.Rectangle, bool) {
	if region.Width <= 0 || region.Height <= 0 {
		return image.Rectangle{}, false
	}
	r := region.Rect().Intersect(image.Rect(0, 0, w, h))
	if r.Empty() {
		return image.Rectangle{}, false
	}
	return r, true
}

// Capturer clamps regions to the screen and grabs them with a bounded wait.
type Capturer struct {
	backend Backend
	timeout time.Duration
	logger  logger.Logger
}

// NewCapturer creates a capturer over backend.
func NewCapturer(backend Backend, opts ...Option) *Capturer {
	c := &Capturer{
		backend: backend,
		timeout: DefaultTimeout,
		logger:  logger.Get().Named("screen"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScreenSize returns the width and height of the captured display.
func (c *Capturer) ScreenSize() (int, int) {
	b := c.backend.Bounds()
	return b.Dx(), b.Dy()
}

// Capture returns the pixels of region clamped to the screen, or false when
// nothing valid could be read. Backend errors, panics and timeouts are
// reported as false.
func (c *Capturer) Capture(ctx context.Context, region model.ScreenRegion) (*image.RGBA, bool) {
	w, h := c.ScreenSize()
	rect, ok := Clamp(region, w, h)
	if !ok {
		c.logger.Debug(ctx, "region outside screen",
			logger.Any("region", region),
			logger.Int("screenWidth", w),
			logger.Int("screenHeight", h))
		return nil, false
	}

	img, err := c.grab(ctx, rect)
	if err != nil {
		c.logger.Warn(ctx, "region capture failed",
			logger.Any("region", region),
			logger.Error(err))
		return nil, false
	}
	return img, true
}

type grabResult struct {
	img *image.RGBA
	err error
}

func (c *Capturer) grab(ctx context.Context, rect image.Rectangle) (*image.RGBA, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan grabResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- grabResult{err: fmt.Errorf("capture backend panic: %v", r)}
			}
		}()
		img, err := c.backend.Grab(rect)
		if err == nil && img == nil {
			err = ErrNoDisplay
		}
		done <- grabResult{img: img, err: err}
	}()

	select {
	case res := <-done:
		return res.img, res.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}
