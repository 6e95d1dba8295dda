// Package render draws an annotation graph to a PNG, optionally with a found
// path highlighted. It is a preview for the CLI and the API, not the editor canvas.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/ritzau/annotator/pkg/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// ErrTooLarge is returned when the point extents would need an unreasonable canvas
var ErrTooLarge = errors.New("canvas too large")

// MaxSide bounds the width and height of a rendered image
const MaxSide = 8192

const (
	lineColor      = "#9e9e9e"
	highlightColor = "#d62728"
	pointColor     = "#1f4e79"
	labelColor     = "#202020"
	background     = "#ffffff"
)

// Options controls a render
type Options struct {
	Padding     float64 // Space around the point extents
	PointRadius float64
	LineWidth   float64
	FontSize    float64
	Directed    bool     // Draw arrow heads
	Path        []string // Point ids on the highlighted path
	Highlight   []string // Edge ids drawn highlighted
}

// DefaultOptions returns options suitable for a quick preview
func DefaultOptions() Options {
	return Options{
		Padding:     40,
		PointRadius: 6,
		LineWidth:   2,
		FontSize:    12,
	}
}

var loadFont = sync.OnceValues(func() (*truetype.Font, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return f, nil
})

// bounds returns the point extents; an empty graph is a single point at the origin
func bounds(points []model.Point) (minX, minY, maxX, maxY float64) {
	if len(points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = points[0].X, points[0].Y
	maxX, maxY = minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// Render draws s. Points keep their relative layout; the canvas is the extents plus padding.
func Render(s model.Snapshot, opts Options) (image.Image, error) {
	dc, err := draw(s, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG renders s and encodes it as PNG
func WritePNG(w io.Writer, s model.Snapshot, opts Options) error {
	dc, err := draw(s, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// EncodePNG writes an image produced by Render
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func draw(s model.Snapshot, opts Options) (*gg.Context, error) {
	minX, minY, maxX, maxY := bounds(s.Points)
	w := maxX - minX + 2*opts.Padding
	h := maxY - minY + 2*opts.Padding
	// Compared as floats: huge, NaN or infinite extents must not wrap around in the int conversion
	if !(w <= MaxSide) || !(h <= MaxSide) {
		return nil, fmt.Errorf("%w: %gx%g", ErrTooLarge, w, h)
	}
	width, height := max(int(math.Ceil(w)), 1), max(int(math.Ceil(h)), 1)

	ttf, err := loadFont()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(background)
	dc.Clear()
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	at := func(p model.Point) (float64, float64) {
		return p.X - minX + opts.Padding, p.Y - minY + opts.Padding
	}

	points := make(map[string]model.Point, len(s.Points))
	for _, p := range s.Points {
		if _, dup := points[p.ID]; !dup {
			points[p.ID] = p
		}
	}
	highlighted := toSet(opts.Highlight)
	onPath := toSet(opts.Path)

	// Plain lines first so highlighted ones are drawn on top
	for _, pass := range []bool{false, true} {
		for _, e := range s.Edges {
			if highlighted[e.ID] != pass {
				continue
			}
			from, okFrom := points[e.FromID]
			to, okTo := points[e.ToID]
			if !okFrom || !okTo || e.FromID == e.ToID {
				continue
			}

			x1, y1 := at(from)
			x2, y2 := at(to)
			if pass {
				dc.SetHexColor(highlightColor)
				dc.SetLineWidth(opts.LineWidth * 2)
			} else {
				dc.SetHexColor(lineColor)
				dc.SetLineWidth(opts.LineWidth)
			}
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()

			if opts.Directed {
				drawArrow(dc, x1, y1, x2, y2, opts.PointRadius)
			}
		}
	}

	for _, p := range s.Points {
		x, y := at(p)
		if onPath[p.ID] {
			dc.SetHexColor(highlightColor)
		} else {
			dc.SetHexColor(pointColor)
		}
		dc.DrawCircle(x, y, opts.PointRadius)
		dc.Fill()

		if p.Label != "" {
			dc.SetHexColor(labelColor)
			dc.DrawStringAnchored(p.Label, x, y-opts.PointRadius-2, 0.5, 0)
		}
	}

	return dc, nil
}

// drawArrow draws a filled head at the target end of a line, stopping at the point's edge
func drawArrow(dc *gg.Context, fx, fy, tx, ty, radius float64) {
	dx, dy := tx-fx, ty-fy
	length := math.Hypot(dx, dy)
	if length <= radius {
		return
	}
	dx /= length
	dy /= length

	tipX, tipY := tx-dx*radius, ty-dy*radius
	const size, spread = 8.0, 0.5

	dc.MoveTo(tipX, tipY)
	dc.LineTo(tipX-size*dx+size*dy*spread, tipY-size*dy-size*dx*spread)
	dc.LineTo(tipX-size*dx-size*dy*spread, tipY-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
