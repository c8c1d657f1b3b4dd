package tracker

import "errors"

var (
	// ErrInvalidBox is returned by Update when a detection box is malformed
	ErrInvalidBox = errors.New("invalid detection box")
	// ErrEmptyFrame is returned by Update when the frame image has no data
	ErrEmptyFrame = errors.New("empty frame image")
	// ErrFrameOrder is returned by Update when the frame index does not
	// increase from the previous call
	ErrFrameOrder = errors.New("frame index out of order")
	// ErrIDExhausted is returned when no further track IDs can be allocated
	ErrIDExhausted = errors.New("track id space exhausted")
)
