// Package plot renders curves to PNG images.
package plot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"honnef.co/go/anim"
)

// Options controls the size and the plotted input range of an image.
type Options struct {
	Width  int
	Height int
	// Samples is the number of evaluations used for the extrapolated parts
	// of the plot.
	Samples int
	// From and To select the plotted input range. If they are equal, the
	// curve's key range plus a quarter of its span on either side is used.
	From, To float64
	// Labels draws the input and output range next to the axes.
	Labels bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	if o.Samples <= 1 {
		o.Samples = 200
	}
	return o
}

const margin = 24.0

var (
	background = color.White
	axisColor  = color.Gray{Y: 0xc0}
	curveColor = color.RGBA{R: 0x1f, G: 0x5f, B: 0xbf, A: 0xff}
	extraColor = color.RGBA{R: 0x9f, G: 0xbf, B: 0xef, A: 0xff}
	keyColor   = color.RGBA{R: 0xcf, G: 0x3f, B: 0x1f, A: 0xff}
)

var (
	ErrNothingToPlot = errors.New("curve has no keys")
	ErrNonFinite     = errors.New("curve has infinite or NaN points")
)

// frame maps (input, output) space to pixels.
type frame struct {
	x0, x1, y0, y1 float64
	w, h           float64
}

func (f frame) pt(p anim.Point) (float64, float64) {
	px, py := p.Splat()
	x := margin + (px-f.x0)/(f.x1-f.x0)*(f.w-2*margin)
	y := f.h - margin - (py-f.y0)/(f.y1-f.y0)*(f.h-2*margin)
	return x, y
}

// checkFinite rejects curves that gg can't draw.
func checkFinite(c *anim.Curve) error {
	if c.Len() == 1 {
		if pt := anim.Pt(c.Keys()[0], c.Values()[0]); pt.IsNaN() || pt.IsInf() {
			return fmt.Errorf("key 0 at %v: %w", pt, ErrNonFinite)
		}
	}
	for i := 0; i+1 < c.Len(); i++ {
		if seg := c.Segment(i); seg.IsNaN() || seg.IsInf() {
			return fmt.Errorf("segment %d: %w", i, ErrNonFinite)
		}
	}
	return nil
}

func inputRange(c *anim.Curve, opts Options) (float64, float64) {
	if opts.From != opts.To {
		return math.Min(opts.From, opts.To), math.Max(opts.From, opts.To)
	}
	start, end := c.Bounds()
	pad := (end - start) / 4
	if pad == 0 {
		pad = 1
	}
	return start - pad, end + pad
}

// Render draws c into a new image.
func Render(c *anim.Curve, opts Options) (image.Image, error) {
	if c.Len() == 0 {
		return nil, ErrNothingToPlot
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	dc, err := draw(c, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// EncodePNG renders c and writes it to w as PNG.
func EncodePNG(w io.Writer, c *anim.Curve, opts Options) error {
	if c.Len() == 0 {
		return ErrNothingToPlot
	}
	if err := c.Validate(); err != nil {
		return err
	}
	dc, err := draw(c, opts.withDefaults())
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func draw(c *anim.Curve, opts Options) (*gg.Context, error) {
	if err := checkFinite(c); err != nil {
		return nil, err
	}
	from, to := inputRange(c, opts)
	start, end := c.Bounds()

	ts := make([]float64, opts.Samples)
	vs := make([]float64, opts.Samples)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range ts {
		t := from + (to-from)*float64(i)/float64(opts.Samples-1)
		v := c.Evaluate(t)
		ts[i], vs[i] = t, v
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if c.Len() > 1 {
		bbox := c.BoundingBox()
		lo, hi = math.Min(lo, bbox.Y0), math.Max(hi, bbox.Y1)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	f := frame{x0: from, x1: to, y0: lo, y1: hi, w: float64(opts.Width), h: float64(opts.Height)}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(background)
	dc.Clear()

	// Axes through the origin when it's in view, along the edges otherwise.
	ax, ay := f.pt(anim.Pt(clamp(0, from, to), clamp(0, lo, hi)))
	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, ay, f.w-margin, ay)
	dc.DrawLine(ax, margin, ax, f.h-margin)
	dc.Stroke()

	// Extrapolated parts.
	dc.SetColor(extraColor)
	dc.SetLineWidth(1.5)
	for i := 1; i < len(ts); i++ {
		if ts[i] <= start || ts[i-1] >= end {
			x0, y0 := f.pt(anim.Pt(ts[i-1], vs[i-1]))
			x1, y1 := f.pt(anim.Pt(ts[i], vs[i]))
			dc.DrawLine(x0, y0, x1, y1)
		}
	}
	dc.Stroke()

	// Key range, segment by segment.
	dc.SetColor(curveColor)
	dc.SetLineWidth(2)
	if c.Len() == 1 {
		x, y := f.pt(anim.Pt(start, c.Values()[0]))
		dc.DrawPoint(x, y, 1)
	}
	for i := 0; i+1 < c.Len(); i++ {
		seg := c.Segment(i)
		x, y := f.pt(seg.Start())
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
		x1, y1 := f.pt(seg.P1)
		x2, y2 := f.pt(seg.P2)
		x3, y3 := f.pt(seg.End())
		dc.CubicTo(x1, y1, x2, y2, x3, y3)
	}
	if c.Len() > 1 {
		// Close the jump of a trailing step segment.
		x, y := f.pt(anim.Pt(end, c.Values()[c.Len()-1]))
		dc.LineTo(x, y)
	}
	dc.Stroke()

	dc.SetColor(keyColor)
	for i, k := range c.Keys() {
		x, y := f.pt(anim.Pt(k, c.Values()[i]))
		dc.DrawCircle(x, y, 3)
		dc.Fill()
	}

	if opts.Labels {
		face, err := labelFace()
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(label(from), margin, f.h-margin/2, 0, 0.5)
		dc.DrawStringAnchored(label(to), f.w-margin, f.h-margin/2, 1, 0.5)
		dc.DrawStringAnchored(label(hi), margin/4, margin, 0, 0.5)
		dc.DrawStringAnchored(label(lo), margin/4, f.h-margin, 0, 0.5)
	}
	return dc, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func label(v float64) string {
	return fmt.Sprintf("%.3g", v)
}

func labelFace() (font.Face, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    10,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
