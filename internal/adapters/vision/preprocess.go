// Package vision binarizes captured regions with OpenCV before recognition.
package vision

import (
	"fmt"
	"image"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/extract"
	"gocv.io/x/gocv"
)

// Preprocessing constants.
const (
	DefaultThreshold = 150
	maxValue         = 255

	adaptiveBlockSize = 11
	adaptiveOffset    = 2
)

// Preprocessor converts pixels to a closed binary image.
type Preprocessor struct {
	threshold  int
	kernelRows int
	kernelCols int
}

var _ extract.Preprocessor = (*Preprocessor)(nil)

// New creates a preprocessor with a 150 cutoff and a 2x2 closing kernel.
func New(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		threshold:  DefaultThreshold,
		kernelRows: 2,
		kernelCols: 2,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preprocess converts img to grayscale, binarizes it with mode and fuses broken
// strokes with a morphological close. Output depends only on the input and
// the configured parameters.
func (p *Preprocessor) Preprocess(img image.Image, mode extract.Mode) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("to mat: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	binary := gocv.NewMat()
	defer binary.Close()
	switch mode {
	case extract.ModeFixed:
		gocv.Threshold(gray, &binary, float32(p.threshold), maxValue, gocv.ThresholdBinary)
	default:
		gocv.AdaptiveThreshold(gray, &binary, maxValue, gocv.AdaptiveThresholdGaussian,
			gocv.ThresholdBinary, adaptiveBlockSize, adaptiveOffset)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(p.kernelCols, p.kernelRows))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(binary, &closed, gocv.MorphClose, kernel)

	out, err := closed.ToImage()
	if err != nil {
		return nil, fmt.Errorf("from mat: %w", err)
	}
	g, ok := out.(*image.Gray)
	if !ok {
		return nil, ErrNotGray
	}
	return g, nil
}
