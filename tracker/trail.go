package tracker

import "image"

// Observation is a single entry of a track History
type Observation struct {
	// Frame is the frame index the box was observed in
	Frame int
	// Box is the bounding box the track occupied in that frame
	Box Box
}

// History is the per track record of the box observed in each frame the
// track was matched in, kept in frame order
type History struct {
	observations []Observation
}

// newHistory returns a history holding a single observation
func newHistory(frame int, box Box) *History {
	return &History{
		observations: []Observation{{Frame: frame, Box: box}},
	}
}

// add appends an observation.  Frames arrive in increasing order so the
// history stays sorted.
func (h *History) add(frame int, box Box) {
	h.observations = append(h.observations, Observation{Frame: frame, Box: box})
}

// Len returns the number of frames the track was observed in
func (h *History) Len() int {
	return len(h.observations)
}

// FirstFrame returns the frame index of the first observation
func (h *History) FirstFrame() int {
	return h.observations[0].Frame
}

// LastFrame returns the frame index of the last observation
func (h *History) LastFrame() int {
	return h.observations[len(h.observations)-1].Frame
}

// Observations returns a copy of the recorded observations
func (h *History) Observations() []Observation {
	out := make([]Observation, len(h.observations))
	copy(out, h.observations)
	return out
}

// Rects returns every observed box as an image.Rectangle
func (h *History) Rects() []image.Rectangle {
	rects := make([]image.Rectangle, len(h.observations))

	for i, obs := range h.observations {
		rects[i] = obs.Box.Rect()
	}

	return rects
}

// Points returns the centroid of the most recent observations, at most size
// of them, oldest first.  It is used for drawing a trail.
func (h *History) Points(size int) []image.Point {

	start := 0

	if size > 0 && len(h.observations) > size {
		start = len(h.observations) - size
	}

	points := make([]image.Point, 0, len(h.observations)-start)

	for _, obs := range h.observations[start:] {
		points = append(points, obs.Box.Centroid())
	}

	return points
}
