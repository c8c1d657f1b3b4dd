package clip

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Codec is the FourCC code clips are encoded with
const Codec = "mp4v"

// Writer receives the cropped frames of a clip in order
type Writer interface {
	Write(img gocv.Mat) error
	Close() error
}

// WriterFunc opens a Writer for a clip of the given frame rate and frame size
type WriterFunc func(path string, fps float64, size image.Point) (Writer, error)

// OpenVideoWriter opens a gocv video file writer, creating the output
// directory if needed
func OpenVideoWriter(path string, fps float64, size image.Point) (Writer, error) {

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating clip directory: %w", err)
	}

	vw, err := gocv.VideoWriterFile(path, Codec, fps, size.X, size.Y, true)

	if err != nil {
		return nil, fmt.Errorf("error opening video writer: %w", err)
	}

	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("video writer for %s failed to open", path)
	}

	return vw, nil
}
