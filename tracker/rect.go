package tracker

import (
	"fmt"
	"image"
)

// Box is a detection bounding box in pixel coordinates of the source frame,
// expressed as (left, top, right, bottom)
type Box struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// NewBox creates a new Box with given coordinates
func NewBox(left, top, right, bottom int) Box {
	return Box{
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
	}
}

// Width returns the width of the box
func (b Box) Width() int {
	return b.Right - b.Left
}

// Height returns the height of the box
func (b Box) Height() int {
	return b.Bottom - b.Top
}

// Centroid returns the integer midpoint of the box, truncated toward zero
func (b Box) Centroid() image.Point {
	return image.Point{
		X: int(float64(b.Left+b.Right) / 2.0),
		Y: int(float64(b.Top+b.Bottom) / 2.0),
	}
}

// Rect converts the box to an image.Rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Validate checks the box is well formed
func (b Box) Validate() error {

	if b.Left < 0 || b.Top < 0 {
		return fmt.Errorf("%w: negative coordinate in %v", ErrInvalidBox, b)
	}

	if b.Right < b.Left || b.Bottom < b.Top {
		return fmt.Errorf("%w: inverted edges in %v", ErrInvalidBox, b)
	}

	return nil
}

// String renders the box as (left, top, right, bottom)
func (b Box) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.Left, b.Top, b.Right, b.Bottom)
}

// BoxFromRect creates a Box from an image.Rectangle
func BoxFromRect(r image.Rectangle) Box {
	return NewBox(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}
