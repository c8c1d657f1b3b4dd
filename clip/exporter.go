package clip

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Sink receives the result of every export, eg: a clip catalog
type Sink interface {
	Record(ctx context.Context, res Result) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, res Result) error

// Record calls f(ctx, res)
func (f SinkFunc) Record(ctx context.Context, res Result) error {
	return f(ctx, res)
}

// ExporterConfig defines how clips are written
type ExporterConfig struct {
	// Workers is the number of background export workers.  Zero writes each
	// clip inline on the calling goroutine.
	Workers int
	// QueueSize is the number of jobs that can wait for a free worker before
	// Submit blocks
	QueueSize int
	// ThumbnailWidth is the width of the poster image written beside each
	// clip.  Zero disables thumbnails.
	ThumbnailWidth int
}

// DefaultExporterConfig returns the inline export settings
func DefaultExporterConfig() ExporterConfig {
	return ExporterConfig{
		Workers:        0,
		QueueSize:      8,
		ThumbnailWidth: 0,
	}
}

// Exporter writes clip jobs to their Writer, either inline or through a pool
// of background workers
type Exporter struct {
	cfg     ExporterConfig
	open    WriterFunc
	log     zerolog.Logger
	metrics *exportMetrics
	sinkMu  sync.Mutex
	sinks   []Sink
	// jobs queue for the worker pool
	jobs chan *Job
	wg   sync.WaitGroup
	// mu guards closed against Submit racing with Close
	mu     sync.RWMutex
	closed bool
	close  sync.Once
}

// NewExporter creates a new Exporter and starts its workers.  A nil open
// function defaults to OpenVideoWriter.
func NewExporter(cfg ExporterConfig, open WriterFunc, log zerolog.Logger,
	sinks ...Sink) *Exporter {

	if open == nil {
		open = OpenVideoWriter
	}

	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}

	e := &Exporter{
		cfg:     cfg,
		open:    open,
		log:     log.With().Str("component", "exporter").Logger(),
		sinks:   sinks,
		metrics: newExportMetrics(),
	}

	if cfg.Workers > 0 {
		e.jobs = make(chan *Job, cfg.QueueSize)

		for i := 0; i < cfg.Workers; i++ {
			e.wg.Add(1)
			go e.worker()
		}
	}

	return e
}

// AddSink registers another receiver of export results
func (e *Exporter) AddSink(s Sink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.sinks = append(e.sinks, s)
}

// worker exports jobs until the queue is closed
func (e *Exporter) worker() {
	defer e.wg.Done()

	for job := range e.jobs {
		e.Export(job)
	}
}

// Submit hands the job to the exporter, which takes ownership of it.  With
// no workers, or once the exporter is closed, the clip is written before
// Submit returns.
func (e *Exporter) Submit(job *Job) {

	e.mu.RLock()

	if e.jobs == nil || e.closed {
		e.mu.RUnlock()
		e.Export(job)
		return
	}

	e.jobs <- job
	e.mu.RUnlock()
}

// Export writes the job to its clip file and reports the result to the sinks.
// The job's crops are freed on return.
func (e *Exporter) Export(job *Job) Result {

	defer job.Close()

	res := newResult(job)
	res.Frames, res.Err = e.write(job)
	res.Elapsed = time.Since(res.Started)

	attrs := metric.WithAttributes(attribute.Int64("track.id", int64(job.TrackID)))
	ctx := context.Background()

	if res.Err != nil {
		e.metrics.failed.Add(ctx, 1, attrs)
		e.log.Error().Err(res.Err).Uint64("track", job.TrackID).Str("path", job.Path).
			Msg("Clip export failed")
	} else {
		e.metrics.exported.Add(ctx, 1, attrs)
		e.metrics.duration.Record(ctx, res.Elapsed.Seconds())

		if e.cfg.ThumbnailWidth > 0 && len(job.Crops) > 0 {
			thumb := ThumbnailPath(job.Path)
			err := writeThumbnail(thumb, job.Crops[len(job.Crops)/2], e.cfg.ThumbnailWidth)

			if err != nil {
				e.log.Warn().Err(err).Uint64("track", job.TrackID).Msg("Thumbnail not written")
			} else {
				res.Thumbnail = thumb
			}
		}

		e.log.Info().Uint64("track", job.TrackID).Str("path", job.Path).
			Int("frames", res.Frames).Int("held", res.Held).
			Dur("elapsed", res.Elapsed).Msg("Clip exported")
	}

	e.sinkMu.Lock()
	sinks := e.sinks
	e.sinkMu.Unlock()

	for _, s := range sinks {
		if err := s.Record(ctx, res); err != nil {
			e.log.Warn().Err(err).Uint64("track", job.TrackID).Msg("Export result not recorded")
		}
	}

	return res
}

// write streams the crops to a new clip file and returns the number of
// frames written
func (e *Exporter) write(job *Job) (int, error) {

	size := job.Size()

	if size.X <= 0 || size.Y <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrDegenerateRegion, job.Region)
	}

	w, err := e.open(job.Path, job.FPS, size)

	if err != nil {
		return 0, fmt.Errorf("error opening clip %s: %w", job.Path, err)
	}

	written := 0

	for _, crop := range job.Crops {
		if err := w.Write(crop); err != nil {
			w.Close()
			return written, fmt.Errorf("error writing frame %d of clip %s: %w",
				written, job.Path, err)
		}
		written++
	}

	if err := w.Close(); err != nil {
		return written, fmt.Errorf("error closing clip %s: %w", job.Path, err)
	}

	return written, nil
}

// Close stops accepting background jobs and waits for queued and in flight
// exports to finish
func (e *Exporter) Close() {
	e.close.Do(func() {
		e.mu.Lock()
		e.closed = true

		if e.jobs != nil {
			close(e.jobs)
		}

		e.mu.Unlock()
		e.wg.Wait()
	})
}
