package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-cliptrack/tracker"
	"gocv.io/x/gocv"
)

// Tracks is the view of the tracker needed for rendering
type Tracks interface {
	Objects() []tracker.Object
	History(id uint64) ([]tracker.Observation, bool)
	Trail(id uint64, size int) []image.Point
	Status() tracker.Status
}

// DetectionBoxes renders the raw detection boxes of a frame, eg: as passed
// to the tracker
func DetectionBoxes(img *gocv.Mat, boxes []tracker.Box, lineThickness int) {
	for _, box := range boxes {
		gocv.Rectangle(img, box.Rect(), Grey, lineThickness)
	}
}

// TrackBoxes renders the last observed box of every active track with its id.
// Tracks not matched in the current frame are drawn at their last position
// with the number of frames they have been missing.
func TrackBoxes(img *gocv.Mat, tracks Tracks, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, obj := range tracks.Objects() {

		hist, ok := tracks.History(obj.ID)

		if !ok || len(hist) == 0 {
			continue
		}

		rect := hist[len(hist)-1].Box.Rect()
		useClr := TrackColor(obj.ID)

		text := fmt.Sprintf("ID %d", obj.ID)

		if obj.Missed > 0 {
			useClr = Grey
			text = fmt.Sprintf("ID %d missed %d", obj.ID, obj.Missed)
		}

		gocv.Rectangle(img, rect, useClr, lineThickness)
		gocv.Circle(img, obj.Centroid, 3, useClr, -1)

		boxLabels = append(boxLabels, newBoxLabel(rect, text, useClr, font, lineThickness))
	}

	// draw labels last so they are the top most layer
	for _, label := range boxLabels {
		label.draw(img, font)
	}
}
