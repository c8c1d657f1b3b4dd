package replay

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-cliptrack/tracker"
)

const recorded = `{"frame":0,"boxes":[[10,10,30,30],[50,50,60,60]],"scores":[0.9,0.1]}

{"frame":2,"boxes":[[1,1,2,2],[3,3,4,4],[5,5,6,6],[7,7,8,8],[9,9,10,10]],"scores":[0.5,0.5,0.5,0.5,0.5]}
{"frame":5,"boxes":[[100,50,140,90]]}
`

func TestReaderBoxes(t *testing.T) {
	r := NewReader(strings.NewReader(recorded), DefaultConfig())

	tests := []struct {
		frame int
		want  []tracker.Box
	}{
		{0, []tracker.Box{tracker.NewBox(10, 10, 30, 30)}},
		{1, nil},
		{2, []tracker.Box{
			tracker.NewBox(1, 1, 2, 2),
			tracker.NewBox(3, 3, 4, 4),
			tracker.NewBox(5, 5, 6, 6),
			tracker.NewBox(7, 7, 8, 8),
		}},
		{3, nil},
		{4, nil},
		{5, []tracker.Box{tracker.NewBox(100, 50, 140, 90)}},
		{6, nil},
	}

	for _, tc := range tests {
		boxes, err := r.Boxes(tc.frame)
		require.NoError(t, err, "frame %d", tc.frame)

		if tc.want == nil {
			assert.Empty(t, boxes, "frame %d", tc.frame)
			continue
		}

		assert.Equal(t, tc.want, boxes, "frame %d", tc.frame)
	}
}

func TestReaderSkipsUnrequestedFrames(t *testing.T) {
	r := NewReader(strings.NewReader(recorded), DefaultConfig())

	boxes, err := r.Boxes(5)
	require.NoError(t, err)
	assert.Len(t, boxes, 1)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderErrors(t *testing.T) {

	t.Run("malformed json", func(t *testing.T) {
		r := NewReader(strings.NewReader("{\"frame\":0,\"boxes\":[[1,2]\n"), DefaultConfig())
		_, err := r.Next()
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("score count mismatch", func(t *testing.T) {
		r := NewReader(strings.NewReader(`{"frame":0,"boxes":[[1,1,2,2]],"scores":[0.5,0.6]}`),
			DefaultConfig())
		_, err := r.Boxes(0)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("out of order", func(t *testing.T) {
		r := NewReader(strings.NewReader("{\"frame\":3}\n{\"frame\":3}\n"), DefaultConfig())

		_, err := r.Next()
		require.NoError(t, err)

		_, err = r.Next()
		assert.ErrorIs(t, err, ErrOutOfOrder)
	})
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detections.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(recorded), 0644))

	r, err := Open(path, Config{ScoreThreshold: 0.05, MaxDetections: 0})
	require.NoError(t, err)
	defer r.Close()

	boxes, err := r.Boxes(0)
	require.NoError(t, err)
	assert.Len(t, boxes, 2)

	_, err = Open(filepath.Join(t.TempDir(), "missing.jsonl"), DefaultConfig())
	assert.Error(t, err)
}
