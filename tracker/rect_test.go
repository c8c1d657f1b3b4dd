package tracker

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxCentroid(t *testing.T) {

	tests := []struct {
		box  Box
		want image.Point
	}{
		{NewBox(10, 10, 30, 30), image.Pt(20, 20)},
		{NewBox(100, 50, 141, 91), image.Pt(120, 70)},
		{NewBox(0, 0, 1, 1), image.Pt(0, 0)},
		{NewBox(5, 5, 5, 5), image.Pt(5, 5)},
	}

	for _, tc := range tests {
		t.Run(tc.box.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.box.Centroid())
		})
	}
}

func TestBoxValidate(t *testing.T) {

	require.NoError(t, NewBox(0, 0, 10, 10).Validate())
	require.NoError(t, NewBox(4, 4, 4, 4).Validate())

	assert.ErrorIs(t, NewBox(-1, 0, 10, 10).Validate(), ErrInvalidBox)
	assert.ErrorIs(t, NewBox(0, -3, 10, 10).Validate(), ErrInvalidBox)
	assert.ErrorIs(t, NewBox(10, 0, 5, 10).Validate(), ErrInvalidBox)
	assert.ErrorIs(t, NewBox(0, 10, 10, 5).Validate(), ErrInvalidBox)
}

func TestBoxRect(t *testing.T) {
	box := NewBox(1, 2, 11, 22)

	assert.Equal(t, 10, box.Width())
	assert.Equal(t, 20, box.Height())
	assert.Equal(t, image.Rect(1, 2, 11, 22), box.Rect())
	assert.Equal(t, box, BoxFromRect(box.Rect()))
	assert.Equal(t, "(1, 2, 11, 22)", box.String())
}

func TestDetectionsToBoxes(t *testing.T) {

	dets := []Detection{
		NewDetection(NewBox(0, 0, 10, 10), 0.9),
		NewDetection(NewBox(10, 10, 20, 20), 0.1),
		NewDetection(NewBox(20, 20, 30, 30), 0.2),
		NewDetection(NewBox(30, 30, 40, 40), 0.5),
		NewDetection(NewBox(40, 40, 50, 50), 0.99),
	}

	t.Run("threshold and limit", func(t *testing.T) {
		boxes := DetectionsToBoxes(dets, 0.2, 4)
		assert.Equal(t, []Box{NewBox(0, 0, 10, 10), NewBox(30, 30, 40, 40)}, boxes)
	})

	t.Run("no limit", func(t *testing.T) {
		boxes := DetectionsToBoxes(dets, 0.2, 0)
		assert.Len(t, boxes, 3)
	})

	t.Run("no detections", func(t *testing.T) {
		assert.Empty(t, DetectionsToBoxes(nil, 0.2, 4))
	})
}

func TestHistoryPoints(t *testing.T) {

	h := newHistory(3, NewBox(0, 0, 10, 10))
	h.add(4, NewBox(10, 0, 20, 10))
	h.add(7, NewBox(20, 0, 30, 10))

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 3, h.FirstFrame())
	assert.Equal(t, 7, h.LastFrame())

	assert.Equal(t, []image.Point{{X: 15, Y: 5}, {X: 25, Y: 5}}, h.Points(2))
	assert.Len(t, h.Points(0), 3)
	assert.Len(t, h.Rects(), 3)
}
