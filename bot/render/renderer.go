// Package render draws session boards and round results as PNG images.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Style holds the canvas size and palette shared by every image
type Style struct {
	Width     int
	Padding   float64
	RowHeight float64
	TileGap   float64

	Background [2][3]float64 // gradient top and bottom
	Panel      [4]float64
	Accent     [3]float64
	Win        [3]float64
	Lose       [3]float64
	Text       [3]float64
	Muted      [3]float64
}

// DefaultStyle is a dark felt table
func DefaultStyle() Style {
	return Style{
		Width:      520,
		Padding:    18,
		RowHeight:  24,
		TileGap:    10,
		Background: [2][3]float64{{0.03, 0.16, 0.10}, {0.01, 0.07, 0.05}},
		Panel:      [4]float64{1, 1, 1, 0.07},
		Accent:     [3]float64{1, 0.84, 0},
		Win:        [3]float64{0.34, 0.95, 0.53},
		Lose:       [3]float64{0.93, 0.26, 0.27},
		Text:       [3]float64{1, 1, 1},
		Muted:      [3]float64{0.72, 0.76, 0.74},
	}
}

type faces struct {
	title   font.Face
	heading font.Face
	body    font.Face
	mono    font.Face
	die     font.Face
}

// Renderer turns board and result views into PNG bytes. Font faces are
// not safe for concurrent use, so each call builds its own.
type Renderer struct {
	style   Style
	regular *truetype.Font
	bold    *truetype.Font
	mono    *truetype.Font
}

// NewRenderer parses the embedded Go fonts
func NewRenderer(style Style) (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	mono, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mono font: %w", err)
	}
	return &Renderer{style: style, regular: regular, bold: bold, mono: mono}, nil
}

func (r *Renderer) faces() faces {
	return faces{
		title:   newFace(r.bold, 22),
		heading: newFace(r.bold, 15),
		body:    newFace(r.regular, 13),
		mono:    newFace(r.mono, 12),
		die:     newFace(r.bold, 14),
	}
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	})
}

func (r *Renderer) canvas(height int) *gg.Context {
	dc := gg.NewContext(r.style.Width, height)
	top, bottom := r.style.Background[0], r.style.Background[1]
	gradient := gg.NewLinearGradient(0, 0, 0, float64(height))
	gradient.AddColorStop(0, rgb(top))
	gradient.AddColorStop(1, rgb(bottom))
	dc.SetFillStyle(gradient)
	dc.DrawRectangle(0, 0, float64(r.style.Width), float64(height))
	dc.Fill()
	return dc
}

func (r *Renderer) encode(dc *gg.Context, kind string, start time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", kind, err)
	}
	log.WithFields(log.Fields{
		"image":       kind,
		"duration_ms": time.Since(start).Milliseconds(),
		"bytes":       buf.Len(),
	}).Debug("Image rendered")
	return buf.Bytes(), nil
}

func (r *Renderer) panel(dc *gg.Context, x, y, w, h float64) {
	p := r.style.Panel
	dc.SetRGBA(p[0], p[1], p[2], p[3])
	dc.DrawRoundedRectangle(x, y, w, h, 8)
	dc.Fill()
}

// drawSharpText draws text with a faint drop shadow
func drawSharpText(dc *gg.Context, text string, x, y, ax, ay float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawStringAnchored(text, x+0.5, y+0.5, ax, ay)
	dc.Pop()
	dc.DrawStringAnchored(text, x, y, ax, ay)
}

func setRGB(dc *gg.Context, c [3]float64) {
	dc.SetRGB(c[0], c[1], c[2])
}

func rgb(c [3]float64) color.Color {
	return color.RGBA{R: uint8(c[0] * 255), G: uint8(c[1] * 255), B: uint8(c[2] * 255), A: 255}
}
