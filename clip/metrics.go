package clip

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/swdee/go-cliptrack/clip"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// exportMetrics are the instruments recorded by the Exporter
type exportMetrics struct {
	exported metric.Int64Counter
	failed   metric.Int64Counter
	duration metric.Float64Histogram
}

// newExportMetrics creates the exporter instruments, falling back to no-op
// instruments if registration fails
func newExportMetrics() *exportMetrics {
	m := meter()

	exported, err := m.Int64Counter("cliptrack.clips.exported",
		metric.WithDescription("Clips written successfully"))
	if err != nil {
		exported = noop.Int64Counter{}
	}

	failed, err := m.Int64Counter("cliptrack.clips.failed",
		metric.WithDescription("Clips that failed to export"))
	if err != nil {
		failed = noop.Int64Counter{}
	}

	duration, err := m.Float64Histogram("cliptrack.export.duration",
		metric.WithDescription("Time taken to write a clip"),
		metric.WithUnit("s"))
	if err != nil {
		duration = noop.Float64Histogram{}
	}

	return &exportMetrics{
		exported: exported,
		failed:   failed,
		duration: duration,
	}
}
