package render

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-cliptrack/clip"
	"github.com/swdee/go-cliptrack/tracker"
	"gocv.io/x/gocv"
)

type discardExporter struct{}

func (discardExporter) Submit(job *clip.Job) { job.Close() }

func TestTrackColor(t *testing.T) {
	assert.Equal(t, trackColors[0], TrackColor(0))
	assert.Equal(t, trackColors[3], TrackColor(uint64(len(trackColors))+3))
}

func TestDrawTracks(t *testing.T) {
	cfg := tracker.DefaultConfig()
	cfg.OutputDir = t.TempDir()

	ct := tracker.NewCentroidTracker(cfg, discardExporter{}, zerolog.Nop())
	defer ct.Close()

	frame := gocv.NewMatWithSize(180, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	for i := 0; i < 4; i++ {
		_, err := ct.Update([]tracker.Box{
			tracker.NewBox(100+i*5, 50, 140+i*5, 90),
			tracker.NewBox(200, 100, 230, 130),
		}, i, frame)
		require.NoError(t, err)
	}

	// second track goes missing
	_, err := ct.Update([]tracker.Box{tracker.NewBox(120, 50, 160, 90)}, 4, frame)
	require.NoError(t, err)

	img := frame.Clone()
	defer img.Close()

	TrackBoxes(&img, ct, DefaultFont(), 2)
	Trail(&img, ct, DefaultTrailStyle())
	Status(&img, ct.Status(), 4, DefaultFont())
	DetectionBoxes(&img, []tracker.Box{tracker.NewBox(10, 10, 20, 20)}, 1)

	// the first track's current box outline is painted in its color
	px := img.GetVecbAt(60, 120)
	clr := TrackColor(0)
	assert.Equal(t, []uint8{clr.B, clr.G, clr.R}, []uint8{px[0], px[1], px[2]})

	// status background is painted black
	px = img.GetVecbAt(1, 1)
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{px[0], px[1], px[2]})
}
