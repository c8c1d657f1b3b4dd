package tracker

import "image"

// Object represents a tracked object held by the CentroidTracker
type Object struct {
	// ID is the unique track ID, assigned in registration order and never
	// reused
	ID uint64
	// Centroid is the last known center point of the object
	Centroid image.Point
	// Missed is the number of consecutive frames the object has not been
	// matched to a detection
	Missed int
}

// Detection is a single bounding box produced by the detector for a frame
type Detection struct {
	// Box is the bounding box of the detected object
	Box Box
	// Score is the confidence score of the detection
	Score float32
}

// NewDetection is a constructor function for the Detection struct
func NewDetection(box Box, score float32) Detection {
	return Detection{
		Box:   box,
		Score: score,
	}
}
