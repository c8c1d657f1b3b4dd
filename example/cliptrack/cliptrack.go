package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/swdee/go-cliptrack/catalog"
	"github.com/swdee/go-cliptrack/clip"
	"github.com/swdee/go-cliptrack/config"
	"github.com/swdee/go-cliptrack/logging"
	"github.com/swdee/go-cliptrack/render"
	"github.com/swdee/go-cliptrack/replay"
	"github.com/swdee/go-cliptrack/tracker"
	"gocv.io/x/gocv"
)

// Demo reads a video and its recorded detections, tracks the objects in it
// and exports a clip of every object tracked long enough
type Demo struct {
	cfg      config.Config
	log      zerolog.Logger
	tracker  *tracker.CentroidTracker
	exporter *clip.Exporter
	catalog  *catalog.Catalog
	dets     *replay.Reader
	window   *gocv.Window
}

// NewDemo wires the exporter, optional catalog and tracker from the config
func NewDemo(cfg config.Config, log zerolog.Logger) (*Demo, error) {

	d := &Demo{
		cfg: cfg,
		log: log,
	}

	d.exporter = clip.NewExporter(cfg.Export, nil, log)

	if cfg.Catalog.Enabled {
		db, err := catalog.Open(cfg.Catalog.Driver, cfg.Catalog.DSN)

		if err != nil {
			return nil, err
		}

		d.catalog, err = catalog.New(db, log)

		if err != nil {
			return nil, err
		}

		d.exporter.AddSink(d.catalog)
	}

	if cfg.Video.Detections == "" {
		return nil, fmt.Errorf("no detections file given")
	}

	var err error
	d.dets, err = replay.Open(cfg.Video.Detections, cfg.Replay)

	if err != nil {
		return nil, err
	}

	d.tracker = tracker.NewCentroidTracker(cfg.Tracker, d.exporter, log)

	if cfg.Video.Display {
		d.window = gocv.NewWindow("cliptrack")
	}

	return d, nil
}

// Run tracks every frame of the video until it ends or ctx is cancelled
func (d *Demo) Run(ctx context.Context) error {

	video, err := gocv.OpenVideoCapture(d.cfg.Video.Source)

	if err != nil {
		return fmt.Errorf("error opening video source: %w", err)
	}

	defer video.Close()

	img := gocv.NewMat()
	defer img.Close()

	frameIndex := 0

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Int("frame", frameIndex).Msg("Interrupted, flushing tracks")
			return nil
		default:
		}

		if ok := video.Read(&img); !ok {
			d.log.Info().Int("frames", frameIndex).Msg("Reached end of video")
			return nil
		}

		if img.Empty() {
			continue
		}

		boxes, err := d.dets.Boxes(frameIndex)

		if err != nil {
			return fmt.Errorf("error reading detections: %w", err)
		}

		if _, err := d.tracker.Update(boxes, frameIndex, img); err != nil {
			return fmt.Errorf("error updating tracker: %w", err)
		}

		if d.cfg.Video.StatusEvery > 0 && frameIndex%d.cfg.Video.StatusEvery == 0 {
			d.log.Info().Int("frame", frameIndex).Msg(d.tracker.Status().String())
		}

		if d.window != nil {
			d.show(img, boxes, frameIndex)
		}

		frameIndex++
	}
}

// show renders the tracks on a copy of the frame and displays it
func (d *Demo) show(img gocv.Mat, boxes []tracker.Box, frameIndex int) {

	out := img.Clone()
	defer out.Close()

	style := render.DefaultTrailStyle()
	style.Size = d.cfg.Video.TrailSize

	render.DetectionBoxes(&out, boxes, 1)
	render.TrackBoxes(&out, d.tracker, render.DefaultFont(), 2)
	render.Trail(&out, d.tracker, style)
	render.Status(&out, d.tracker.Status(), frameIndex, render.DefaultFont())

	d.window.IMShow(out)
	d.window.WaitKey(1)
}

// Close exports the remaining tracks and waits for every clip to be written
func (d *Demo) Close() {

	d.tracker.Close()
	d.exporter.Close()

	if d.catalog != nil {
		if recs, err := d.catalog.List(context.Background(), d.catalog.Session()); err == nil {
			d.log.Info().Int("clips", len(recs)).Str("session", d.catalog.Session().String()).
				Msg("Clips recorded in catalog")
		}

		if err := d.catalog.Close(); err != nil {
			d.log.Warn().Err(err).Msg("Error closing catalog")
		}
	}

	if err := d.dets.Close(); err != nil {
		d.log.Warn().Err(err).Msg("Error closing detections file")
	}

	if d.window != nil {
		d.window.Close()
	}
}

func main() {

	// read in cli flags
	cfgFile := flag.String("c", "", "Config file (JSON or YAML)")
	vidFile := flag.String("v", "", "Video file or camera device to track objects in")
	detFile := flag.String("d", "", "JSON lines file of recorded detections for the video")
	outDir := flag.String("o", "", "Directory to write clips to")
	prefix := flag.String("p", "", "Prefix for clip file names")
	workers := flag.Int("w", 0, "Number of background clip export workers")
	display := flag.Bool("show", false, "Display the tracked video in a window")
	logLevel := flag.String("log", "", "Log level: trace, debug, info, warn or error")

	flag.Parse()

	cfg, err := config.Load(*cfgFile)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// flags set on the command line override the config
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Video.Source = *vidFile
		case "d":
			cfg.Video.Detections = *detFile
		case "o":
			cfg.Tracker.OutputDir = *outDir
		case "p":
			cfg.Tracker.Prefix = *prefix
		case "w":
			cfg.Export.Workers = *workers
		case "show":
			cfg.Video.Display = *display
		case "log":
			cfg.LogLevel = *logLevel
		}
	})

	opts := logging.Options{Level: cfg.LogLevel}

	if cfg.Graylog.Enabled {
		opts.GraylogAddress = cfg.Graylog.Address
	}

	log, logCloser, err := logging.New(opts)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, log, logCloser))
}

// run executes the demo and returns the process exit code
func run(cfg config.Config, log zerolog.Logger, logCloser io.Closer) int {

	defer logCloser.Close()

	demo, err := NewDemo(cfg, log)

	if err != nil {
		log.Error().Err(err).Msg("Error creating demo")
		return 1
	}

	defer demo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("video", cfg.Video.Source).Str("output", cfg.Tracker.OutputDir).
		Int("workers", cfg.Export.Workers).Msg("Tracking objects")

	if err := demo.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Tracking stopped")
		return 1
	}

	return 0
}
