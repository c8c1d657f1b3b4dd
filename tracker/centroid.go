package tracker

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"github.com/swdee/go-cliptrack/clip"
	"github.com/swdee/go-cliptrack/framebuf"
	"gocv.io/x/gocv"
)

// Config defines the CentroidTracker settings
type Config struct {
	// Prefix is prepended to the track id to name each clip
	Prefix string
	// OutputDir is the directory clips are written to
	OutputDir string
	// MaxDisappeared is the number of consecutive frames a track may go
	// unmatched before it is deregistered
	MaxDisappeared int
	// Padding is the fraction of the union box width and height added
	// around the export region
	Padding float64
	// MinExportFrames is the number of observed frames a track must exceed
	// for a clip to be exported
	MinExportFrames int
	// Capacity is the number of frames retained in the frame buffer
	Capacity int
	// HardCapacity is the number of frames retained when tracks still need
	// frames older than Capacity allows
	HardCapacity int
	// FPS is the frame rate of exported clips
	FPS float64
}

// DefaultConfig returns the default tracker settings
func DefaultConfig() Config {
	return Config{
		Prefix:          "",
		OutputDir:       "output",
		MaxDisappeared:  5,
		Padding:         0.10,
		MinExportFrames: 10,
		Capacity:        1000,
		HardCapacity:    4000,
		FPS:             20,
	}
}

// ClipExporter receives the clip of each retired track that is long enough
// to export.  The exporter takes ownership of the job.
type ClipExporter interface {
	Submit(job *clip.Job)
}

// Status is the count of tracks for status reporting
type Status struct {
	// Tracking is the number of active tracks
	Tracking int
	// Disappearing is the number of active tracks not matched in the most
	// recent frame
	Disappearing int
}

// String renders the status line
func (s Status) String() string {
	return fmt.Sprintf("Tracking %d objects and %d disappeared", s.Tracking, s.Disappearing)
}

// CentroidTracker assigns persistent ids to per frame detections by nearest
// centroid matching and exports a clip of every track once it retires
type CentroidTracker struct {
	cfg Config
	// nextID is the id given to the next registered object
	nextID uint64
	// exhausted is set once the id space has been used up
	exhausted bool
	// objects are the active tracks in id order
	objects []*Object
	// histories holds the observations of each active track
	histories map[uint64]*History
	// frames buffers the raw frames clips are cut from
	frames *framebuf.Buffer
	// lastFrame is the index of the most recent frame processed
	lastFrame int
	hasFrame  bool
	exporter  ClipExporter
	log       zerolog.Logger
	metrics   *trackerMetrics
	// mu serialises Update with the status and query methods
	mu sync.Mutex
}

// NewCentroidTracker initializes and returns a new CentroidTracker.  If
// exporter is nil clips are written inline with gocv.
func NewCentroidTracker(cfg Config, exporter ClipExporter, log zerolog.Logger) *CentroidTracker {

	if exporter == nil {
		exporter = clip.NewExporter(clip.DefaultExporterConfig(), nil, log)
	}

	return &CentroidTracker{
		cfg:       cfg,
		histories: make(map[uint64]*History),
		frames:    framebuf.New(cfg.Capacity, cfg.HardCapacity),
		exporter:  exporter,
		log:       log.With().Str("component", "tracker").Logger(),
		metrics:   newTrackerMetrics(),
	}
}

// Reset clears the tracked data and buffered frames without exporting and
// restarts id allocation
func (ct *CentroidTracker) Reset() {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.nextID = 0
	ct.exhausted = false
	ct.objects = nil
	ct.histories = make(map[uint64]*History)
	ct.frames.Reset()
	ct.lastFrame = 0
	ct.hasFrame = false
}

// Update updates the tracker with the detection boxes of a new frame and
// returns the centroid of every active track by id.  The tracker keeps its
// own copy of frame.
func (ct *CentroidTracker) Update(boxes []Box, frameIndex int, frame gocv.Mat) (map[uint64]image.Point, error) {

	ct.mu.Lock()
	defer ct.mu.Unlock()

	// Step 1: validate input before any state is touched
	if frame.Empty() {
		return nil, fmt.Errorf("frame %d: %w", frameIndex, ErrEmptyFrame)
	}

	if ct.hasFrame && frameIndex <= ct.lastFrame {
		return nil, fmt.Errorf("%w: frame %d after frame %d", ErrFrameOrder,
			frameIndex, ct.lastFrame)
	}

	for i, box := range boxes {
		if err := box.Validate(); err != nil {
			return nil, fmt.Errorf("frame %d detection %d: %w", frameIndex, i, err)
		}
	}

	if !ct.idsAvailable(len(boxes)) {
		return nil, fmt.Errorf("frame %d: %w", frameIndex, ErrIDExhausted)
	}

	// Step 2: store the frame
	img := frame.Clone()

	if err := ct.frames.Add(frameIndex, img); err != nil {
		img.Close()
		return nil, fmt.Errorf("error buffering frame: %w", err)
	}

	ct.lastFrame = frameIndex
	ct.hasFrame = true

	// Step 3: no detections so every object ages
	if len(boxes) == 0 {

		for _, obj := range ct.activeObjects() {
			obj.Missed++

			if obj.Missed > ct.cfg.MaxDisappeared {
				ct.deregister(obj)
			}
		}

		ct.evictFrames()
		return ct.centroids(), nil
	}

	// Step 4: find centroids of the input boxes
	inputCentroids := make([]image.Point, len(boxes))

	for i, box := range boxes {
		inputCentroids[i] = box.Centroid()
	}

	if len(ct.objects) == 0 {
		// Step 5: nothing tracked yet so register every input
		for i := range inputCentroids {
			ct.register(inputCentroids[i], boxes[i], frameIndex)
		}

	} else {
		// Step 6: match inputs to existing objects by nearest centroid
		objects := ct.activeObjects()
		objectCentroids := make([]image.Point, len(objects))

		for i, obj := range objects {
			objectCentroids[i] = obj.Centroid
		}

		dist := calcDistances(objectCentroids, inputCentroids)
		matchesIdx, unusedRows, unusedCols := greedyAssignment(dist)

		for _, matchIdx := range matchesIdx {
			obj := objects[matchIdx[0]]
			col := matchIdx[1]

			obj.Centroid = inputCentroids[col]
			obj.Missed = 0

			ct.histories[obj.ID].add(frameIndex, boxes[col])
			ct.frames.Resolve(frameIndex, obj.ID)
		}

		// Step 7: age unmatched objects, or register unmatched inputs
		if len(objects) >= len(inputCentroids) {
			for _, row := range unusedRows {
				obj := objects[row]
				obj.Missed++

				if obj.Missed > ct.cfg.MaxDisappeared {
					ct.deregister(obj)
				}
			}

		} else {
			for _, col := range unusedCols {
				ct.register(inputCentroids[col], boxes[col], frameIndex)
			}
		}
	}

	// Step 8: trim the frame buffer
	ct.evictFrames()

	return ct.centroids(), nil
}

// idsAvailable checks n more ids can be allocated
func (ct *CentroidTracker) idsAvailable(n int) bool {

	if n == 0 {
		return true
	}

	if ct.exhausted {
		return false
	}

	// ids nextID..MaxUint64 inclusive remain
	return uint64(n)-1 <= math.MaxUint64-ct.nextID
}

// register starts tracking a new object
func (ct *CentroidTracker) register(centroid image.Point, box Box, frameIndex int) {

	id := ct.nextID

	if ct.nextID == math.MaxUint64 {
		ct.exhausted = true
	} else {
		ct.nextID++
	}

	ct.objects = append(ct.objects, &Object{
		ID:       id,
		Centroid: centroid,
		Missed:   0,
	})

	ct.histories[id] = newHistory(frameIndex, box)
	ct.frames.Resolve(frameIndex, id)
	ct.frames.Pin(frameIndex)

	ct.metrics.registered.Add(context.Background(), 1)
	ct.log.Debug().Uint64("track", id).Int("frame", frameIndex).
		Stringer("box", box).Msg("Registered track")
}

// deregister stops tracking the object and exports its clip if it was
// observed in enough frames
func (ct *CentroidTracker) deregister(obj *Object) {

	for i, o := range ct.objects {
		if o.ID == obj.ID {
			ct.objects = append(ct.objects[:i], ct.objects[i+1:]...)
			break
		}
	}

	hist, ok := ct.histories[obj.ID]

	if !ok {
		return
	}

	delete(ct.histories, obj.ID)
	defer ct.frames.Unpin(hist.FirstFrame())

	ct.metrics.retired.Add(context.Background(), 1)

	logEvt := ct.log.With().Uint64("track", obj.ID).Int("observed", hist.Len()).
		Int("firstFrame", hist.FirstFrame()).Int("lastFrame", hist.LastFrame()).Logger()

	if hist.Len() <= ct.cfg.MinExportFrames {
		ct.metrics.discarded.Add(context.Background(), 1)
		logEvt.Debug().Msg("Deregistered track, too short to export")
		return
	}

	job, err := ct.buildJob(obj.ID, hist)

	if err != nil {
		ct.metrics.discarded.Add(context.Background(), 1)
		logEvt.Warn().Err(err).Msg("Deregistered track, clip export skipped")
		return
	}

	logEvt.Info().Stringer("region", job.Region).Msg("Deregistered track, exporting clip")

	ct.exporter.Submit(job)
}

// buildJob crops every buffered frame in the track's inclusive frame range
// to the padded export region
func (ct *CentroidTracker) buildJob(id uint64, hist *History) (*clip.Job, error) {

	sizeFrame, ok := ct.frames.Get(hist.FirstFrame())

	if !ok {
		// first frame was force evicted, fall back to the newest frame
		sizeFrame, ok = ct.frames.Newest()

		if !ok {
			return nil, fmt.Errorf("no buffered frames for track %d", id)
		}
	}

	frameSize := image.Pt(sizeFrame.Image.Cols(), sizeFrame.Image.Rows())

	region, err := clip.Region(hist.Rects(), frameSize, ct.cfg.Padding)

	if err != nil {
		return nil, err
	}

	job := &clip.Job{
		TrackID:    id,
		Path:       clip.Path(ct.cfg.OutputDir, ct.cfg.Prefix, id),
		Region:     region,
		FirstFrame: hist.FirstFrame(),
		LastFrame:  hist.LastFrame(),
		FPS:        ct.cfg.FPS,
		Crops:      make([]gocv.Mat, 0, hist.LastFrame()-hist.FirstFrame()+1),
	}

	for i := hist.FirstFrame(); i <= hist.LastFrame(); i++ {

		frame, ok := ct.frames.Get(i)

		if !ok || !region.In(image.Rect(0, 0, frame.Image.Cols(), frame.Image.Rows())) {
			// hold the previous crop for frames no longer buffered
			if len(job.Crops) == 0 {
				job.Skipped++
				continue
			}

			job.Crops = append(job.Crops, job.Crops[len(job.Crops)-1].Clone())
			job.Held++
			continue
		}

		roi := frame.Image.Region(region)
		job.Crops = append(job.Crops, roi.Clone())
		roi.Close()
	}

	if len(job.Crops) == 0 {
		return nil, fmt.Errorf("no frames buffered in range %d-%d for track %d",
			hist.FirstFrame(), hist.LastFrame(), id)
	}

	if job.Held > 0 || job.Skipped > 0 {
		ct.log.Warn().Uint64("track", id).Int("held", job.Held).Int("skipped", job.Skipped).
			Msg("Clip is missing frames that were no longer buffered")
	}

	return job, nil
}

// evictFrames trims the frame buffer back to capacity
func (ct *CentroidTracker) evictFrames() {

	_, forced := ct.frames.Evict()

	if len(forced) > 0 {
		ct.metrics.evicted.Add(context.Background(), int64(len(forced)))
		ct.log.Warn().Ints("frames", forced).
			Msg("Frame buffer exceeded hard capacity, evicted frames still needed by active tracks")
	}
}

// activeObjects returns a copy of the active object list so objects can be
// deregistered while iterating
func (ct *CentroidTracker) activeObjects() []*Object {
	objs := make([]*Object, len(ct.objects))
	copy(objs, ct.objects)
	return objs
}

// centroids returns the centroid of every active object by id
func (ct *CentroidTracker) centroids() map[uint64]image.Point {

	res := make(map[uint64]image.Point, len(ct.objects))

	for _, obj := range ct.objects {
		res[obj.ID] = obj.Centroid
	}

	return res
}

// Flush deregisters every active track, exporting those long enough, eg: at
// the end of a video
func (ct *CentroidTracker) Flush() {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	for _, obj := range ct.activeObjects() {
		ct.deregister(obj)
	}
}

// Close flushes the active tracks and frees the frame buffer
func (ct *CentroidTracker) Close() {
	ct.Flush()

	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.frames.Reset()
}

// Status returns the count of active and disappearing tracks
func (ct *CentroidTracker) Status() Status {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	s := Status{Tracking: len(ct.objects)}

	for _, obj := range ct.objects {
		if obj.Missed > 0 {
			s.Disappearing++
		}
	}

	return s
}

// Objects returns a copy of the active tracks in id order
func (ct *CentroidTracker) Objects() []Object {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	objs := make([]Object, len(ct.objects))

	for i, obj := range ct.objects {
		objs[i] = *obj
	}

	return objs
}

// History returns the observations of an active track
func (ct *CentroidTracker) History(id uint64) ([]Observation, bool) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	hist, ok := ct.histories[id]

	if !ok {
		return nil, false
	}

	return hist.Observations(), true
}

// Trail returns the most recent centroids of an active track, at most size
// of them, for drawing
func (ct *CentroidTracker) Trail(id uint64, size int) []image.Point {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	hist, ok := ct.histories[id]

	if !ok {
		return nil
	}

	return hist.Points(size)
}

// BufferedFrames returns the indexes of the buffered frames, oldest first
func (ct *CentroidTracker) BufferedFrames() []int {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	return ct.frames.Indexes()
}

// ResolvedIDs returns the track ids resolved in a buffered frame
func (ct *CentroidTracker) ResolvedIDs(frameIndex int) ([]uint64, bool) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	frame, ok := ct.frames.Get(frameIndex)

	if !ok {
		return nil, false
	}

	ids := make([]uint64, len(frame.TrackIDs))
	copy(ids, frame.TrackIDs)

	return ids, true
}
