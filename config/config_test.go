package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-cliptrack/catalog"
	"github.com/swdee/go-cliptrack/clip"
	"github.com/swdee/go-cliptrack/replay"
	"github.com/swdee/go-cliptrack/tracker"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, tracker.DefaultConfig(), cfg.Tracker)
	assert.Equal(t, clip.DefaultExporterConfig(), cfg.Export)
	assert.Equal(t, replay.DefaultConfig(), cfg.Replay)
	assert.False(t, cfg.Catalog.Enabled)
	assert.Equal(t, catalog.DriverSQLite, cfg.Catalog.Driver)
	assert.False(t, cfg.Graylog.Enabled)
	assert.Equal(t, "localhost:12201", cfg.Graylog.Address)
	assert.Equal(t, 30, cfg.Video.StatusEvery)
}

func TestLoad_WithJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cliptrack.json")

	data := `{
		"logLevel": "debug",
		"tracker": { "prefix": "cam1-", "maxDisappeared": 8, "padding": 0.2 },
		"export": { "workers": 2 },
		"catalog": { "enabled": true, "driver": "postgres", "dsn": "host=db" }
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "cam1-", cfg.Tracker.Prefix)
	assert.Equal(t, 8, cfg.Tracker.MaxDisappeared)
	assert.InDelta(t, 0.2, cfg.Tracker.Padding, 1e-9)
	assert.Equal(t, 1000, cfg.Tracker.Capacity, "unset keys keep defaults")
	assert.Equal(t, 2, cfg.Export.Workers)
	assert.True(t, cfg.Catalog.Enabled)
	assert.Equal(t, catalog.DriverPostgres, cfg.Catalog.Driver)
	assert.Equal(t, "host=db", cfg.Catalog.DSN)
}

func TestLoad_WithYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cliptrack.yaml")

	data := "tracker:\n  fps: 30\n  outputDir: clips\nreplay:\n  maxDetections: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, float64(30), cfg.Tracker.FPS)
	assert.Equal(t, "clips", cfg.Tracker.OutputDir)
	assert.Equal(t, 10, cfg.Replay.MaxDetections)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CLIPTRACK_TRACKER_MAXDISAPPEARED", "12")
	t.Setenv("CLIPTRACK_LOGLEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Tracker.MaxDisappeared)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/cliptrack.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Invalid(t *testing.T) {

	tests := []struct {
		name string
		data string
	}{
		{"negative padding", `{"tracker": {"padding": -1}}`},
		{"zero capacity", `{"tracker": {"capacity": 0}}`},
		{"zero fps", `{"tracker": {"fps": 0}}`},
		{"unknown catalog driver", `{"catalog": {"enabled": true, "driver": "mysql"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cliptrack.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.data), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
