package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	// Size is the number of most recent centroids drawn
	Size int
	// LineSame defines if the color of the trail line should be the
	// same color as that of the track.  If set to false then use
	// the color specified at LineColor
	LineSame      bool
	LineColor     color.RGBA
	LineThickness int
	// CircleSame defines if the color of the midpoint circle should be the
	// same color as that of the track.  If set to false then use
	// the color specified at CircleColor
	CircleSame   bool
	CircleColor  color.RGBA
	CircleRadius int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		Size:          30,
		LineSame:      false,
		LineColor:     Yellow,
		LineThickness: 1,
		CircleSame:    true,
		CircleColor:   Pink,
		CircleRadius:  3,
	}
}

// Trail draws the recent centroid path of every active track
func Trail(img *gocv.Mat, tracks Tracks, style TrailStyle) {

	for _, obj := range tracks.Objects() {

		objClr := TrackColor(obj.ID)

		lineClr := objClr
		circleClr := objClr

		if !style.LineSame {
			lineClr = style.LineColor
		}

		if !style.CircleSame {
			circleClr = style.CircleColor
		}

		points := tracks.Trail(obj.ID, style.Size)

		if len(points) < 2 {
			continue
		}

		for i := 1; i < len(points); i++ {
			gocv.Line(img, points[i-1], points[i], lineClr, style.LineThickness)
		}

		// mark the most recent observation
		gocv.Circle(img, points[len(points)-1], style.CircleRadius, circleClr, -1)
	}
}
