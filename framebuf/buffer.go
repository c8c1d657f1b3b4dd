// Package framebuf retains the most recent raw video frames so a clip can be
// cut from them once a track retires.
package framebuf

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrDuplicateFrame is returned when a frame index is added twice
	ErrDuplicateFrame = errors.New("frame index already buffered")
	// ErrEmptyFrame is returned when adding a frame without image data
	ErrEmptyFrame = errors.New("empty frame image")
)

// Frame is a single buffered video frame
type Frame struct {
	// Index is the frame number in the video stream
	Index int
	// Image is the raw frame, owned by the Buffer
	Image gocv.Mat
	// TrackIDs are the tracks resolved in this frame
	TrackIDs []uint64
}

// Buffer is an insertion ordered store of frames with oldest first eviction.
// Frames can be pinned, in which case eviction stops at the oldest pinned
// frame until the hard capacity is reached.
type Buffer struct {
	// capacity is the number of frames to retain when nothing is pinned
	capacity int
	// hardCapacity is the number of frames retained regardless of pins
	hardCapacity int
	// frames in insertion order, oldest first
	frames []*Frame
	// index of frames by frame number
	index map[int]*Frame
	// pins holds a reference count per pinned frame number
	pins map[int]int
}

// New returns a new frame buffer.  A hardCapacity below capacity is raised
// to capacity.
func New(capacity, hardCapacity int) *Buffer {

	if hardCapacity < capacity {
		hardCapacity = capacity
	}

	return &Buffer{
		capacity:     capacity,
		hardCapacity: hardCapacity,
		frames:       make([]*Frame, 0, capacity+1),
		index:        make(map[int]*Frame),
		pins:         make(map[int]int),
	}
}

// Add stores the image under the given frame index.  The buffer takes
// ownership of img and closes it on eviction.
func (b *Buffer) Add(index int, img gocv.Mat) error {

	if img.Empty() {
		return ErrEmptyFrame
	}

	if _, exists := b.index[index]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateFrame, index)
	}

	frame := &Frame{
		Index:    index,
		Image:    img,
		TrackIDs: make([]uint64, 0),
	}

	b.frames = append(b.frames, frame)
	b.index[index] = frame

	return nil
}

// Get returns the frame with the given index
func (b *Buffer) Get(index int) (*Frame, bool) {
	frame, ok := b.index[index]
	return frame, ok
}

// Has reports whether the frame index is buffered
func (b *Buffer) Has(index int) bool {
	_, ok := b.index[index]
	return ok
}

// Resolve records the track id as resolved in the given frame
func (b *Buffer) Resolve(index int, trackID uint64) {
	if frame, ok := b.index[index]; ok {
		frame.TrackIDs = append(frame.TrackIDs, trackID)
	}
}

// Pin holds the frame index and every newer frame against eviction until
// the hard capacity is exceeded
func (b *Buffer) Pin(index int) {
	b.pins[index]++
}

// Unpin releases a hold placed by Pin
func (b *Buffer) Unpin(index int) {

	cnt, ok := b.pins[index]

	if !ok {
		return
	}

	if cnt <= 1 {
		delete(b.pins, index)
		return
	}

	b.pins[index] = cnt - 1
}

// oldestPin returns the lowest pinned frame index
func (b *Buffer) oldestPin() (int, bool) {

	oldest, found := 0, false

	for index := range b.pins {
		if !found || index < oldest {
			oldest = index
			found = true
		}
	}

	return oldest, found
}

// Evict drops the oldest frames until the buffer is back at capacity.  A
// pinned frame stops eviction unless the buffer holds more than the hard
// capacity, in which case frames are forcibly dropped and their indexes
// returned in forced.
func (b *Buffer) Evict() (evicted int, forced []int) {

	pin, pinned := b.oldestPin()

	for len(b.frames) > b.capacity {

		oldest := b.frames[0]

		if pinned && oldest.Index >= pin {
			if len(b.frames) <= b.hardCapacity {
				break
			}
			forced = append(forced, oldest.Index)
		}

		b.drop()
		evicted++
	}

	return evicted, forced
}

// drop removes the oldest frame
func (b *Buffer) drop() {
	oldest := b.frames[0]
	b.frames[0] = nil
	b.frames = b.frames[1:]
	delete(b.index, oldest.Index)
	_ = oldest.Image.Close()
}

// Len returns the number of buffered frames
func (b *Buffer) Len() int {
	return len(b.frames)
}

// Capacity returns the number of frames retained when nothing is pinned
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Indexes returns the buffered frame indexes, oldest first
func (b *Buffer) Indexes() []int {

	indexes := make([]int, len(b.frames))

	for i, frame := range b.frames {
		indexes[i] = frame.Index
	}

	return indexes
}

// Newest returns the most recently added frame
func (b *Buffer) Newest() (*Frame, bool) {

	if len(b.frames) == 0 {
		return nil, false
	}

	return b.frames[len(b.frames)-1], true
}

// Reset closes and drops every buffered frame and pin
func (b *Buffer) Reset() {

	for _, frame := range b.frames {
		_ = frame.Image.Close()
	}

	b.frames = make([]*Frame, 0, b.capacity+1)
	b.index = make(map[int]*Frame)
	b.pins = make(map[int]int)
}
