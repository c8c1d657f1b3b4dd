// Package config loads the cliptrack settings from defaults, an optional
// JSON or YAML file and CLIPTRACK_ prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/swdee/go-cliptrack/catalog"
	"github.com/swdee/go-cliptrack/clip"
	"github.com/swdee/go-cliptrack/replay"
	"github.com/swdee/go-cliptrack/tracker"
)

// EnvPrefix is the prefix of environment variables overriding settings, eg:
// CLIPTRACK_TRACKER_MAXDISAPPEARED=8
const EnvPrefix = "CLIPTRACK"

// CatalogConfig holds the clip catalog database settings
type CatalogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Driver  string `json:"driver" mapstructure:"driver"`
	DSN     string `json:"dsn" mapstructure:"dsn"`
}

// GraylogConfig holds the GELF log shipping settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// VideoConfig holds the input video settings of the command
type VideoConfig struct {
	// Source is the video file or camera device to read
	Source string `json:"source" mapstructure:"source"`
	// Detections is the recorded detections file
	Detections string `json:"detections" mapstructure:"detections"`
	// Display shows the annotated frames in a window
	Display bool `json:"display" mapstructure:"display"`
	// StatusEvery is the number of frames between status log lines
	StatusEvery int `json:"statusEvery" mapstructure:"statusEvery"`
	// TrailSize is the number of centroids drawn behind each track
	TrailSize int `json:"trailSize" mapstructure:"trailSize"`
}

// Config is the complete cliptrack configuration
type Config struct {
	LogLevel string              `json:"logLevel" mapstructure:"logLevel"`
	Graylog  GraylogConfig       `json:"graylog" mapstructure:"graylog"`
	Tracker  tracker.Config      `json:"tracker" mapstructure:"tracker"`
	Export   clip.ExporterConfig `json:"export" mapstructure:"export"`
	Catalog  CatalogConfig       `json:"catalog" mapstructure:"catalog"`
	Replay   replay.Config       `json:"replay" mapstructure:"replay"`
	Video    VideoConfig         `json:"video" mapstructure:"video"`
}

// setDefaults registers every setting with its default value.  Only keys
// with a default are read from the environment.
func setDefaults(v *viper.Viper) {

	v.SetDefault("logLevel", "info")

	v.SetDefault("graylog.enabled", false)
	v.SetDefault("graylog.address", "localhost:12201")

	tc := tracker.DefaultConfig()
	v.SetDefault("tracker.prefix", tc.Prefix)
	v.SetDefault("tracker.outputDir", tc.OutputDir)
	v.SetDefault("tracker.maxDisappeared", tc.MaxDisappeared)
	v.SetDefault("tracker.padding", tc.Padding)
	v.SetDefault("tracker.minExportFrames", tc.MinExportFrames)
	v.SetDefault("tracker.capacity", tc.Capacity)
	v.SetDefault("tracker.hardCapacity", tc.HardCapacity)
	v.SetDefault("tracker.fps", tc.FPS)

	ec := clip.DefaultExporterConfig()
	v.SetDefault("export.workers", ec.Workers)
	v.SetDefault("export.queueSize", ec.QueueSize)
	v.SetDefault("export.thumbnailWidth", ec.ThumbnailWidth)

	v.SetDefault("catalog.enabled", false)
	v.SetDefault("catalog.driver", catalog.DriverSQLite)
	v.SetDefault("catalog.dsn", "cliptrack.db")

	rc := replay.DefaultConfig()
	v.SetDefault("replay.scoreThreshold", rc.ScoreThreshold)
	v.SetDefault("replay.maxDetections", rc.MaxDetections)

	v.SetDefault("video.source", "")
	v.SetDefault("video.detections", "")
	v.SetDefault("video.display", false)
	v.SetDefault("video.statusEvery", 30)
	v.SetDefault("video.trailSize", 30)
}

// Load reads the configuration.  An empty path uses the defaults and
// environment only, otherwise the file type is taken from its extension.
func Load(path string) (Config, error) {

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the settings are usable
func (c Config) Validate() error {

	switch {
	case c.Tracker.MaxDisappeared < 0:
		return fmt.Errorf("tracker.maxDisappeared must not be negative")
	case c.Tracker.Padding < 0:
		return fmt.Errorf("tracker.padding must not be negative")
	case c.Tracker.Capacity < 1:
		return fmt.Errorf("tracker.capacity must be at least 1")
	case c.Tracker.FPS <= 0:
		return fmt.Errorf("tracker.fps must be positive")
	case c.Export.Workers < 0:
		return fmt.Errorf("export.workers must not be negative")
	}

	if c.Catalog.Enabled && c.Catalog.Driver != catalog.DriverSQLite &&
		c.Catalog.Driver != catalog.DriverPostgres {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownDriver, c.Catalog.Driver)
	}

	return nil
}
