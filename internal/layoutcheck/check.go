// Package layoutcheck captures every configured region once, saves it for
// review and flags regions that fail to capture or look blank.
package layoutcheck

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
)

// Defaults for the check.
const (
	DefaultOutputDir   = "validation_output"
	DefaultMinCoverage = 5.0
	// blankLevel is the gray level at or above which a pixel counts as background.
	blankLevel = 250
)

// Capturer grabs regions of the live screen.
type Capturer interface {
	Capture(ctx context.Context, region model.ScreenRegion) (*image.RGBA, bool)
	ScreenSize() (int, int)
}

// Status is the outcome for one region.
type Status string

const (
	StatusOK            Status = "ok"
	StatusCaptureFailed Status = "capture_failed"
	StatusBlank         Status = "blank"
)

// RegionResult reports one captured region.
type RegionResult struct {
	Row      int
	Field    model.FieldRole
	Region   model.ScreenRegion
	Status   Status
	Coverage float64
	Path     string
}

// Result summarizes a layout check.
type Result struct {
	ScreenWidth  int
	ScreenHeight int
	// Mismatch is set when the layout was recorded at another resolution.
	Mismatch bool
	Regions  []RegionResult
}

// OK reports whether every region captured with enough content.
func (r Result) OK() bool {
	for _, reg := range r.Regions {
		if reg.Status != StatusOK {
			return false
		}
	}
	return true
}

// Checker runs layout checks.
type Checker struct {
	capturer    Capturer
	dir         string
	minCoverage float64
	logger      logger.Logger
}

// New creates a checker writing into DefaultOutputDir.
func New(capturer Capturer, opts ...Option) *Checker {
	c := &Checker{
		capturer:    capturer,
		dir:         DefaultOutputDir,
		minCoverage: DefaultMinCoverage,
		logger:      logger.Get().Named("layoutcheck"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run captures each region of layout once. resolution is the optional
// [width, height] the layout was recorded at. The error is only set when the
// output cannot be written.
func (c *Checker) Run(ctx context.Context, layout model.Layout, resolution []int) (Result, error) {
	var res Result
	res.ScreenWidth, res.ScreenHeight = c.capturer.ScreenSize()
	if len(resolution) == 2 && (resolution[0] != res.ScreenWidth || resolution[1] != res.ScreenHeight) {
		res.Mismatch = true
		c.logger.Warn(ctx, "screen resolution mismatch",
			logger.Any("configured", resolution),
			logger.Int("width", res.ScreenWidth),
			logger.Int("height", res.ScreenHeight))
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}

	for i, row := range layout {
		for _, role := range model.Roles {
			rr := RegionResult{Row: i + 1, Field: role, Region: row.Region(role)}

			img, ok := c.capturer.Capture(ctx, rr.Region)
			if !ok {
				rr.Status = StatusCaptureFailed
				c.logger.Warn(ctx, "region failed to capture",
					logger.Int("row", rr.Row), logger.String("field", role.String()))
				res.Regions = append(res.Regions, rr)
				continue
			}

			rr.Path = filepath.Join(c.dir, fmt.Sprintf("row%d_%s.png", rr.Row, role))
			if err := imaging.Save(img, rr.Path); err != nil {
				return res, fmt.Errorf("save %s: %w", rr.Path, err)
			}

			rr.Coverage = Coverage(img)
			rr.Status = StatusOK
			if rr.Coverage < c.minCoverage {
				rr.Status = StatusBlank
				c.logger.Warn(ctx, "region mostly blank",
					logger.Int("row", rr.Row),
					logger.String("field", role.String()),
					logger.Any("coverage", rr.Coverage))
			}
			res.Regions = append(res.Regions, rr)
		}
	}
	return res, nil
}

// Coverage returns the percentage of pixels darker than the background level.
func Coverage(img image.Image) float64 {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	content := 0
	for i := 0; i < len(gray.Pix); i += 4 {
		if gray.Pix[i] < blankLevel {
			content++
		}
	}
	return float64(content) * 100 / float64(total)
}
