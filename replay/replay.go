// Package replay reads recorded detector output so a video can be tracked
// without running the detector.  Detections are stored as JSON lines, one
// object per frame:
//
//	{"frame":12,"boxes":[[10,20,110,220]],"scores":[0.91]}
//
// Frames without detections may be omitted.
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/swdee/go-cliptrack/tracker"
)

var (
	// ErrMalformed is returned for a line that is not a valid frame record
	ErrMalformed = errors.New("malformed detection record")
	// ErrOutOfOrder is returned when frame numbers do not increase
	ErrOutOfOrder = errors.New("detection records out of frame order")
)

// Config defines how recorded detections are filtered into tracker input
type Config struct {
	// ScoreThreshold is the score a detection must exceed to be tracked
	ScoreThreshold float32
	// MaxDetections is the number of detections considered per frame, in
	// recorded order
	MaxDetections int
}

// DefaultConfig returns the default filter settings
func DefaultConfig() Config {
	return Config{
		ScoreThreshold: 0.2,
		MaxDetections:  4,
	}
}

// Record is the detector output of a single frame
type Record struct {
	Frame  int       `json:"frame"`
	Boxes  [][4]int  `json:"boxes"`
	Scores []float32 `json:"scores"`
}

// Detections converts the record into tracker detections.  A record without
// scores gives every box a score of 1.
func (r Record) Detections() ([]tracker.Detection, error) {

	if r.Scores != nil && len(r.Scores) != len(r.Boxes) {
		return nil, fmt.Errorf("%w: frame %d has %d boxes and %d scores", ErrMalformed,
			r.Frame, len(r.Boxes), len(r.Scores))
	}

	dets := make([]tracker.Detection, len(r.Boxes))

	for i, b := range r.Boxes {
		score := float32(1)

		if r.Scores != nil {
			score = r.Scores[i]
		}

		dets[i] = tracker.NewDetection(tracker.NewBox(b[0], b[1], b[2], b[3]), score)
	}

	return dets, nil
}

// Reader reads frame records in order
type Reader struct {
	cfg     Config
	scan    *bufio.Scanner
	closer  io.Closer
	line    int
	last    int
	started bool
	pending *Record
}

// NewReader returns a Reader of JSON lines from r
func NewReader(r io.Reader, cfg Config) *Reader {

	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	return &Reader{
		cfg:  cfg,
		scan: scan,
	}
}

// Open returns a Reader of the detections file at path
func Open(path string, cfg Config) (*Reader, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("error opening detections file: %w", err)
	}

	r := NewReader(f, cfg)
	r.closer = f

	return r, nil
}

// Close closes the underlying file when opened with Open
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Next returns the next frame record, or io.EOF once all are read
func (r *Reader) Next() (Record, error) {

	if r.pending != nil {
		rec := *r.pending
		r.pending = nil
		return rec, nil
	}

	for r.scan.Scan() {
		r.line++
		line := r.scan.Bytes()

		if len(line) == 0 {
			continue
		}

		var rec Record

		if err := json.Unmarshal(line, &rec); err != nil {
			return Record{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, r.line, err)
		}

		if r.started && rec.Frame <= r.last {
			return Record{}, fmt.Errorf("%w: line %d frame %d after frame %d",
				ErrOutOfOrder, r.line, rec.Frame, r.last)
		}

		r.last = rec.Frame
		r.started = true

		return rec, nil
	}

	if err := r.scan.Err(); err != nil {
		return Record{}, fmt.Errorf("error reading detections: %w", err)
	}

	return Record{}, io.EOF
}

// Boxes returns the filtered boxes recorded for a frame, or no boxes if the
// frame has no record.  Frames must be requested in increasing order, records
// of skipped frames are discarded.
func (r *Reader) Boxes(frame int) ([]tracker.Box, error) {

	for {
		rec, err := r.Next()

		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		if err != nil {
			return nil, err
		}

		if rec.Frame < frame {
			continue
		}

		if rec.Frame > frame {
			r.pending = &rec
			return nil, nil
		}

		dets, err := rec.Detections()

		if err != nil {
			return nil, err
		}

		return tracker.DetectionsToBoxes(dets, r.cfg.ScoreThreshold, r.cfg.MaxDetections), nil
	}
}
