package vision_test

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/vision"
	"github.com/ravushimo/gunsmoke-scanner/internal/domain/extract"
	. "github.com/smartystreets/goconvey/convey"
)

// glyphs draws dark vertical bars on a light background with a one pixel gap
// in the middle of each bar.
func glyphs() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 60, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.RGBA{R: 230, G: 230, B: 230, A: 255})
		}
	}
	for _, x0 := range []int{10, 25, 40} {
		for y := 4; y < 16; y++ {
			if y == 10 {
				continue
			}
			for x := x0; x < x0+4; x++ {
				img.Set(x, y, color.RGBA{R: 20, G: 20, B: 20, A: 255})
			}
		}
	}
	return img
}

func TestPreprocess(t *testing.T) {
	Convey("Given a preprocessor with default settings", t, func() {
		p := vision.New()
		img := glyphs()

		for _, mode := range []extract.Mode{extract.ModeAdaptive, extract.ModeFixed} {
			mode := mode
			Convey("When binarizing in "+mode.String()+" mode", func() {
				out, err := p.Preprocess(img, mode)

				Convey("Then a binary image of the same size should come back", func() {
					So(err, ShouldBeNil)
					So(out.Bounds().Dx(), ShouldEqual, 60)
					So(out.Bounds().Dy(), ShouldEqual, 20)
					for _, v := range out.Pix {
						So(v == 0 || v == 255, ShouldBeTrue)
					}
				})

				Convey("And a repeated run should be byte identical", func() {
					again, err := p.Preprocess(img, mode)
					So(err, ShouldBeNil)
					So(bytes.Equal(out.Pix, again.Pix), ShouldBeTrue)
				})
			})
		}

		Convey("When binarizing with the fixed threshold", func() {
			out, err := p.Preprocess(img, extract.ModeFixed)

			Convey("Then dark strokes should be black and background white", func() {
				So(err, ShouldBeNil)
				So(out.GrayAt(12, 6).Y, ShouldEqual, uint8(0))
				So(out.GrayAt(2, 2).Y, ShouldEqual, uint8(255))
			})
		})

		Convey("When the input is nil or empty", func() {
			_, errNil := p.Preprocess(nil, extract.ModeAdaptive)
			_, errEmpty := p.Preprocess(image.NewRGBA(image.Rectangle{}), extract.ModeFixed)

			Convey("Then an empty image error should be returned", func() {
				So(errNil, ShouldEqual, vision.ErrEmptyImage)
				So(errEmpty, ShouldEqual, vision.ErrEmptyImage)
			})
		})
	})

	Convey("Given custom parameters", t, func() {
		Convey("When the threshold is very low", func() {
			p := vision.New(vision.WithThreshold(5), vision.WithCloseKernel(3, 3))
			out, err := p.Preprocess(glyphs(), extract.ModeFixed)

			Convey("Then almost every pixel should be white", func() {
				So(err, ShouldBeNil)
				So(out.GrayAt(12, 6).Y, ShouldEqual, uint8(255))
			})
		})
	})
}
