package render

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/annotator/pkg/model"
)

func corridor() model.Snapshot {
	return model.Snapshot{
		Points: []model.Point{
			{ID: "1", Label: "A", X: 100, Y: 50},
			{ID: "2", Label: "B", X: 200, Y: 50},
			{ID: "3", X: 200, Y: 150},
		},
		Edges: []model.Edge{
			{ID: "l1", FromID: "1", ToID: "2"},
			{ID: "l2", FromID: "2", ToID: "3"},
			{ID: "l3", FromID: "3", ToID: "gone"},
		},
	}
}

func TestRenderBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.Padding = 20

	img, err := Render(corridor(), opts)
	require.NoError(t, err)

	// Extents 100x100 plus padding on both sides
	assert.Equal(t, 140, img.Bounds().Dx())
	assert.Equal(t, 140, img.Bounds().Dy())
}

func TestRenderHighlight(t *testing.T) {
	opts := DefaultOptions()
	opts.Padding = 20
	opts.Path = []string{"1", "2"}
	opts.Highlight = []string{"l1"}

	img, err := Render(corridor(), opts)
	require.NoError(t, err)

	// Midpoint of l1, away from the points
	r, g, b, _ := img.At(70, 20).RGBA()
	assert.Greater(t, r>>8, uint32(180), "highlighted line is red")
	assert.Less(t, g>>8, uint32(90))
	assert.Less(t, b>>8, uint32(90))

	// Midpoint of l2 is plain grey
	r, g, b, _ = img.At(120, 70).RGBA()
	assert.InDelta(t, r>>8, g>>8, 8)
	assert.InDelta(t, g>>8, b>>8, 8)
	assert.Less(t, r>>8, uint32(220))

	// Far corner is background
	r, g, b, _ = img.At(5, 135).RGBA()
	assert.Equal(t, []uint32{255, 255, 255}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Directed = true
	require.NoError(t, WritePNG(&buf, corridor(), opts))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 180, img.Bounds().Dx())
}

func TestRenderEmptyAndTooLarge(t *testing.T) {
	img, err := Render(model.NewSnapshot(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dx())

	huge := model.Snapshot{Points: []model.Point{{ID: "a"}, {ID: "b", X: 1e6}}}
	_, err = Render(huge, DefaultOptions())
	assert.ErrorIs(t, err, ErrTooLarge)

	for name, p := range map[string]model.Point{
		"beyond int range": {ID: "b", X: 1e19, Y: 10},
		"negative":         {ID: "b", X: -1e300},
		"nan":              {ID: "b", Y: math.NaN()},
		"infinite":         {ID: "b", X: math.Inf(1)},
	} {
		s := model.Snapshot{Points: []model.Point{{ID: "a"}, p}}
		_, err := Render(s, DefaultOptions())
		assert.ErrorIs(t, err, ErrTooLarge, name)

		var buf bytes.Buffer
		assert.ErrorIs(t, WritePNG(&buf, s, DefaultOptions()), ErrTooLarge, name)
		assert.Zero(t, buf.Len(), name)
	}
}
