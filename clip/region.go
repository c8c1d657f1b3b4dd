package clip

import (
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strconv"
)

var (
	// ErrDegenerateRegion is returned when the export region has no area
	ErrDegenerateRegion = errors.New("degenerate export region")
	// ErrNoBoxes is returned when computing a region from no boxes
	ErrNoBoxes = errors.New("no boxes to compute region from")
)

// Region computes the export region of a track.  It is the union of all the
// boxes observed, grown by padding times the union width and height, split
// evenly between both sides, and clamped to a frame of the given size.
func Region(rects []image.Rectangle, frameSize image.Point, padding float64) (image.Rectangle, error) {

	if len(rects) == 0 {
		return image.Rectangle{}, ErrNoBoxes
	}

	minLeft, minTop := math.MaxInt, math.MaxInt
	maxRight, maxBottom := -1, -1

	for _, r := range rects {
		if r.Min.X < minLeft {
			minLeft = r.Min.X
		}
		if r.Max.X > maxRight {
			maxRight = r.Max.X
		}
		if r.Min.Y < minTop {
			minTop = r.Min.Y
		}
		if r.Max.Y > maxBottom {
			maxBottom = r.Max.Y
		}
	}

	widthPad := float64(maxRight-minLeft) * padding * 0.5
	heightPad := float64(maxBottom-minTop) * padding * 0.5

	region := image.Rect(0, 0, 0, 0)
	region.Min.X = int(math.Max(0, float64(minLeft)-widthPad))
	region.Max.X = int(math.Min(float64(frameSize.X), float64(maxRight)+widthPad))
	region.Min.Y = int(math.Max(0, float64(minTop)-heightPad))
	region.Max.Y = int(math.Min(float64(frameSize.Y), float64(maxBottom)+heightPad))

	if region.Dx() <= 0 || region.Dy() <= 0 {
		return region, fmt.Errorf("%w: %v in frame %v", ErrDegenerateRegion, region, frameSize)
	}

	return region, nil
}

// Path returns the clip file name for a track, built from the output
// directory, the run prefix and the track id
func Path(dir, prefix string, trackID uint64) string {
	return filepath.Join(dir, prefix+strconv.FormatUint(trackID, 10)+".mp4")
}
