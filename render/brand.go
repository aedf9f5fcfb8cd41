package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// The vector mark is drawn on a 43x49 artboard.
const (
	markWidth  = 43.0
	markHeight = 49.0
)

// Logo places the brand mark. X and Y are its top-left corner, or its top
// center when Centered is set. Height is the rendered height; width
// follows the mark's aspect ratio. Raster logos replace the vector mark
// only where Raster is set.
type Logo struct {
	X, Y     float64
	Height   float64
	Centered bool
	Raster   bool
	Color    color.NRGBA
}

// drawLogo draws img scaled to l.Height when set, otherwise the vector mark.
func drawLogo(dc *gg.Context, l Logo, img image.Image) {
	if img != nil {
		b := img.Bounds()
		w := int(math.Round(float64(b.Dx()) / float64(b.Dy()) * l.Height))
		scaled := imaging.Resize(img, w, int(math.Round(l.Height)), imaging.Lanczos)
		x := l.X
		if l.Centered {
			x -= float64(w) / 2
		}
		dc.DrawImage(scaled, int(math.Round(x)), int(math.Round(l.Y)))
		return
	}

	scale := l.Height / markHeight
	x := l.X
	if l.Centered {
		x -= markWidth * scale / 2
	}

	dc.Push()
	defer dc.Pop()
	dc.Translate(x, l.Y)
	dc.Scale(scale, scale)
	dc.SetColor(l.Color)

	// Right leaf.
	dc.NewSubPath()
	dc.MoveTo(42, 14)
	dc.CubicTo(43.5, 22, 43, 29, 39, 36)
	dc.CubicTo(35, 42, 28, 47, 21, 48)
	dc.CubicTo(20, 48, 19, 48, 18, 48)
	dc.CubicTo(18, 38, 21, 29, 28, 22)
	dc.CubicTo(31, 19, 37, 14, 42, 14)
	dc.ClosePath()
	dc.Fill()

	// Left leaf.
	dc.NewSubPath()
	dc.MoveTo(1, 15)
	dc.CubicTo(10, 16, 18, 22, 21, 26)
	dc.CubicTo(18, 29, 16, 35, 15, 39)
	dc.CubicTo(15, 42, 15, 44, 15, 47)
	dc.CubicTo(13, 46, 12, 46, 12, 45)
	dc.CubicTo(3, 38, -2, 25, 1, 15)
	dc.ClosePath()
	dc.Fill()

	// Head.
	dc.DrawCircle(22, 9, 9)
	dc.Fill()
}
