package tracker

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/swdee/go-cliptrack/tracker"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// trackerMetrics are the track lifecycle counters
type trackerMetrics struct {
	registered metric.Int64Counter
	retired    metric.Int64Counter
	discarded  metric.Int64Counter
	evicted    metric.Int64Counter
}

func newTrackerMetrics() *trackerMetrics {
	m := meter()

	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			return noop.Int64Counter{}
		}
		return c
	}

	return &trackerMetrics{
		registered: counter("cliptrack.tracks.registered", "Tracks created from unmatched detections"),
		retired:    counter("cliptrack.tracks.retired", "Tracks deregistered after disappearing"),
		discarded:  counter("cliptrack.tracks.discarded", "Retired tracks too short or degenerate to export"),
		evicted:    counter("cliptrack.frames.force_evicted", "Frames evicted while still pinned by a track"),
	}
}
