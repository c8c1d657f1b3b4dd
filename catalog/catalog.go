// Package catalog records every exported clip in a SQL table so a dashboard
// can list the clips of a run.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/swdee/go-cliptrack/clip"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite selects the pure Go SQLite driver
	DriverSQLite = "sqlite"
	// DriverPostgres selects the Postgres driver
	DriverPostgres = "postgres"
)

var (
	// ErrUnknownDriver is returned when opening an unsupported database
	ErrUnknownDriver = errors.New("unknown catalog driver")
	// ErrNotFound is returned when no clip matches the lookup
	ErrNotFound = errors.New("clip not found")
)

// ClipRecord is a row of the clip catalog
type ClipRecord struct {
	gorm.Model
	Session    string `json:"session" gorm:"size:36;index:idx_session_track"`
	TrackID    uint64 `json:"trackId" gorm:"index:idx_session_track"`
	Path       string `json:"path" gorm:"size:1024"`
	Thumbnail  string `json:"thumbnail" gorm:"size:1024"`
	Left       int    `json:"left" gorm:"column:region_left"`
	Top        int    `json:"top" gorm:"column:region_top"`
	Right      int    `json:"right" gorm:"column:region_right"`
	Bottom     int    `json:"bottom" gorm:"column:region_bottom"`
	FirstFrame int    `json:"firstFrame"`
	LastFrame  int    `json:"lastFrame"`
	Frames     int    `json:"frames"`
	Held       int    `json:"held"`
	// ElapsedMs is the time taken to write the clip
	ElapsedMs  int64     `json:"elapsedMs"`
	ExportedAt time.Time `json:"exportedAt" gorm:"index"`
	// Error holds the export failure, empty on success
	Error string `json:"error" gorm:"size:2048"`
}

// Region returns the crop region of the clip
func (r ClipRecord) Region() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Failed reports whether the export of the clip failed
func (r ClipRecord) Failed() bool {
	return r.Error != ""
}

// Open connects to the catalog database with the given driver and DSN
func Open(driver, dsn string) (*gorm.DB, error) {

	cfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var dialector gorm.Dialector

	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)

	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, cfg)

	if err != nil {
		return nil, fmt.Errorf("error opening %s catalog: %w", driver, err)
	}

	return db, nil
}

// Catalog stores the export results of a single run, identified by its
// session id
type Catalog struct {
	db      *gorm.DB
	session uuid.UUID
	log     zerolog.Logger
}

// New migrates the catalog schema and returns a Catalog recording under a
// new session id
func New(db *gorm.DB, log zerolog.Logger) (*Catalog, error) {

	if err := db.AutoMigrate(&ClipRecord{}); err != nil {
		return nil, fmt.Errorf("error migrating catalog schema: %w", err)
	}

	c := &Catalog{
		db:      db,
		session: uuid.New(),
	}

	c.log = log.With().Str("component", "catalog").
		Str("session", c.session.String()).Logger()

	c.log.Info().Str("dialect", db.Dialector.Name()).Msg("Clip catalog ready")

	return c, nil
}

// Session returns the id clips of this run are recorded under
func (c *Catalog) Session() uuid.UUID {
	return c.session
}

// Record stores an export result.  It implements clip.Sink.
func (c *Catalog) Record(ctx context.Context, res clip.Result) error {

	rec := ClipRecord{
		Session:    c.session.String(),
		TrackID:    res.TrackID,
		Path:       res.Path,
		Thumbnail:  res.Thumbnail,
		Left:       res.Region.Min.X,
		Top:        res.Region.Min.Y,
		Right:      res.Region.Max.X,
		Bottom:     res.Region.Max.Y,
		FirstFrame: res.FirstFrame,
		LastFrame:  res.LastFrame,
		Frames:     res.Frames,
		Held:       res.Held,
		ElapsedMs:  res.Elapsed.Milliseconds(),
		ExportedAt: res.Started.Add(res.Elapsed),
	}

	if res.Err != nil {
		rec.Error = res.Err.Error()
	}

	if err := c.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("error recording clip of track %d: %w", res.TrackID, err)
	}

	c.log.Debug().Uint64("track", res.TrackID).Uint("row", rec.ID).Msg("Recorded clip")

	return nil
}

// List returns the clips recorded under a session in track id order.  A nil
// session lists the current run.
func (c *Catalog) List(ctx context.Context, session uuid.UUID) ([]ClipRecord, error) {

	if session == uuid.Nil {
		session = c.session
	}

	var recs []ClipRecord

	err := c.db.WithContext(ctx).
		Where("session = ?", session.String()).
		Order("track_id").
		Find(&recs).Error

	if err != nil {
		return nil, fmt.Errorf("error listing clips: %w", err)
	}

	return recs, nil
}

// Get returns the clip of a track recorded under a session.  A nil session
// looks in the current run.
func (c *Catalog) Get(ctx context.Context, trackID uint64, session uuid.UUID) (ClipRecord, error) {

	if session == uuid.Nil {
		session = c.session
	}

	var rec ClipRecord

	err := c.db.WithContext(ctx).
		Where("session = ? AND track_id = ?", session.String(), trackID).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, fmt.Errorf("%w: track %d", ErrNotFound, trackID)
	}

	if err != nil {
		return rec, fmt.Errorf("error getting clip of track %d: %w", trackID, err)
	}

	return rec, nil
}

// Close closes the underlying database connection
func (c *Catalog) Close() error {

	sqlDB, err := c.db.DB()

	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}

	return sqlDB.Close()
}
