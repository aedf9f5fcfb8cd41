package render

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// Paint is one overlay operation in a variant's paint list. Paints are
// applied in order after the background and before the brand mark and
// text, so later paints cover earlier ones where they are opaque.
type Paint interface {
	Apply(dc *gg.Context)
}

// Stop is a gradient color stop at a fractional position in [0, 1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Rect is an axis-aligned area in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

// Solid fills the whole canvas with a single color.
type Solid struct {
	Color color.NRGBA
}

// Apply implements Paint.
func (s Solid) Apply(dc *gg.Context) {
	dc.SetColor(s.Color)
	dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
	dc.Fill()
}

// LinearGradient fills the whole canvas with a gradient running from
// (X0, Y0) to (X1, Y1). Endpoints are fractions of the canvas size, so
// {0, 0, 0, 1} is a top-to-bottom gradient at any dimensions.
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []Stop
}

// Vertical returns a top-to-bottom LinearGradient.
func Vertical(stops ...Stop) LinearGradient {
	return LinearGradient{X0: 0, Y0: 0, X1: 0, Y1: 1, Stops: stops}
}

// Apply implements Paint.
func (l LinearGradient) Apply(dc *gg.Context) {
	w, h := float64(dc.Width()), float64(dc.Height())
	grad := gg.NewLinearGradient(l.X0*w, l.Y0*h, l.X1*w, l.Y1*h)
	for _, s := range l.Stops {
		grad.AddColorStop(s.Offset, s.Color)
	}
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}

// RadialGradient is a glow centered at (CX, CY) fading out at Radius. It
// fills Area when set, otherwise the disc of the gradient itself.
type RadialGradient struct {
	CX, CY, Radius float64
	Stops          []Stop
	Area           *Rect
}

// Apply implements Paint.
func (r RadialGradient) Apply(dc *gg.Context) {
	grad := gg.NewRadialGradient(r.CX, r.CY, 0, r.CX, r.CY, r.Radius)
	for _, s := range r.Stops {
		grad.AddColorStop(s.Offset, s.Color)
	}
	dc.SetFillStyle(grad)
	if r.Area != nil {
		dc.DrawRectangle(r.Area.X, r.Area.Y, r.Area.W, r.Area.H)
	} else {
		dc.DrawCircle(r.CX, r.CY, r.Radius)
	}
	dc.Fill()
}

// Hex parses "#rrggbb" into an opaque color. Malformed input yields black.
func Hex(s string) color.NRGBA {
	c := color.NRGBA{A: 0xff}
	if len(s) == 7 && s[0] == '#' {
		c.R = hexByte(s[1], s[2])
		c.G = hexByte(s[3], s[4])
		c.B = hexByte(s[5], s[6])
	}
	return c
}

// WithAlpha returns c with its alpha set to the fraction a in [0, 1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
	return c
}

// Transparent is fully transparent black, the end stop of every glow.
var Transparent = color.NRGBA{}

func hexByte(hi, lo byte) uint8 {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(b byte) uint8 {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
