package catalog

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-cliptrack/clip"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)

	c, err := New(db, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() { c.Close() })

	return c
}

func result(id uint64, err error) clip.Result {
	return clip.Result{
		TrackID:    id,
		Path:       clip.Path("output", "cam", id),
		Region:     image.Rect(10, 20, 110, 220),
		FirstFrame: 5,
		LastFrame:  30,
		Frames:     26,
		Held:       2,
		Started:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Elapsed:    1500 * time.Millisecond,
		Err:        err,
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Record(ctx, result(7, nil)))
	require.NoError(t, c.Record(ctx, result(2, errors.New("no codec"))))

	recs, err := c.List(ctx, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, uint64(2), recs[0].TrackID)
	assert.Equal(t, uint64(7), recs[1].TrackID)
	assert.True(t, recs[0].Failed())
	assert.Equal(t, "no codec", recs[0].Error)

	rec, err := c.Get(ctx, 7, c.Session())
	require.NoError(t, err)

	assert.False(t, rec.Failed())
	assert.Equal(t, c.Session().String(), rec.Session)
	assert.Equal(t, clip.Path("output", "cam", 7), rec.Path)
	assert.Equal(t, image.Rect(10, 20, 110, 220), rec.Region())
	assert.Equal(t, 5, rec.FirstFrame)
	assert.Equal(t, 30, rec.LastFrame)
	assert.Equal(t, 26, rec.Frames)
	assert.Equal(t, 2, rec.Held)
	assert.Equal(t, int64(1500), rec.ElapsedMs)
}

func TestCatalogGetNotFound(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Get(context.Background(), 99, uuid.Nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogSessionsAreSeparate(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Record(ctx, result(1, nil)))

	recs, err := c.List(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCatalogAsExporterSink(t *testing.T) {
	c := newTestCatalog(t)

	var sink clip.Sink = c
	require.NoError(t, sink.Record(context.Background(), result(4, nil)))

	rec, err := c.Get(context.Background(), 4, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), rec.TrackID)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
