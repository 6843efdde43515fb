package screen

import (
	"image"

	"github.com/kbinani/screenshot"
)

// Display grabs pixels from the primary display.
type Display struct {
	index int
}

// NewDisplay returns a backend for the primary display.
func NewDisplay() *Display {
	return &Display{}
}

// Bounds returns the primary display rectangle.
func (d *Display) Bounds() image.Rectangle {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}
	}
	return screenshot.GetDisplayBounds(d.index)
}

// Grab copies rect from the screen.
func (d *Display) Grab(rect image.Rectangle) (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, ErrNoDisplay
	}
	return screenshot.CaptureRect(rect)
}
