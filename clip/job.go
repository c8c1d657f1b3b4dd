package clip

import (
	"image"
	"time"

	"gocv.io/x/gocv"
)

// Job is a clip ready to be written.  The job owns its crops, which are
// independent copies of the buffered frames, so the frame buffer may evict
// the source frames as soon as the job is built.
type Job struct {
	// TrackID is the id of the retired track
	TrackID uint64
	// Path is the clip file to write
	Path string
	// Region is the crop region within the source frames
	Region image.Rectangle
	// FirstFrame and LastFrame are the inclusive frame range of the clip
	FirstFrame int
	LastFrame  int
	// FPS is the clip frame rate
	FPS float64
	// Crops are the cropped frames, one per output frame
	Crops []gocv.Mat
	// Held counts the output frames that repeat the previous crop because
	// their source frame was no longer buffered
	Held int
	// Skipped counts leading frames dropped because their source frame was
	// no longer buffered and no earlier crop existed
	Skipped int
}

// Size returns the dimensions of the clip
func (j *Job) Size() image.Point {
	return j.Region.Size()
}

// Close frees the crops held by the job
func (j *Job) Close() {
	for i := range j.Crops {
		_ = j.Crops[i].Close()
	}
	j.Crops = nil
}

// Result is the outcome of exporting a single clip
type Result struct {
	// TrackID is the id of the exported track
	TrackID uint64
	// Path is the clip file written
	Path string
	// Thumbnail is the poster image written alongside the clip, if any
	Thumbnail string
	// Region is the crop region within the source frames
	Region image.Rectangle
	// FirstFrame and LastFrame are the inclusive frame range of the clip
	FirstFrame int
	LastFrame  int
	// Frames is the number of frames written
	Frames int
	// Held is the number of frames that repeated the previous crop
	Held int
	// Started is when the export began
	Started time.Time
	// Elapsed is the time spent writing the clip
	Elapsed time.Duration
	// Err is set when the export failed
	Err error
}

// newResult returns a result describing the job
func newResult(job *Job) Result {
	return Result{
		TrackID:    job.TrackID,
		Path:       job.Path,
		Region:     job.Region,
		FirstFrame: job.FirstFrame,
		LastFrame:  job.LastFrame,
		Held:       job.Held,
		Started:    time.Now(),
	}
}
