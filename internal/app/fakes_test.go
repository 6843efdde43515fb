package service_test

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

// layout places row i at y=(i+1)*100 with fixed columns per role.
func layout() model.Layout {
	var l model.Layout
	for i := range l {
		y := (i + 1) * 100
		l[i] = model.RowConfig{
			Nickname:   model.ScreenRegion{X: 0, Y: y, Width: 150, Height: 30},
			SingleHigh: model.ScreenRegion{X: 200, Y: y, Width: 80, Height: 30},
			TotalScore: model.ScreenRegion{X: 400, Y: y, Width: 100, Height: 30},
		}
	}
	return l
}

// screen returns an image positioned at the region. When gate is set every
// capture waits for it to close.
type screen struct {
	gate chan struct{}
}

func (s *screen) Capture(ctx context.Context, r model.ScreenRegion) (*image.RGBA, bool) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, false
		}
	}
	return image.NewRGBA(r.Rect()), true
}

// reader maps region origins to text. Its board can be swapped between cycles.
type reader struct {
	mu   sync.Mutex
	text map[image.Point]string
}

func (r *reader) Extract(_ context.Context, img image.Image, _ bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text[img.Bounds().Min]
}

func (r *reader) set(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = map[image.Point]string{}
	for i, n := range names {
		y := (i + 1) * 100
		r.text[image.Pt(0, y)] = n
		r.text[image.Pt(200, y)] = fmt.Sprint(1000 + i)
		r.text[image.Pt(400, y)] = fmt.Sprintf("%d,000", 90-i*10)
	}
}

func newReader(names ...string) *reader {
	r := &reader{}
	r.set(names...)
	return r
}
