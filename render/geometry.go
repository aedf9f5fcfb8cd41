package render

import "image"

// Geometry is the placement of a source image scaled to cover a target
// canvas. Offsets are zero or negative; the overflow is split equally on
// the axis that overflows.
type Geometry struct {
	DrawWidth  float64
	DrawHeight float64
	OffsetX    float64
	OffsetY    float64
}

// CoverFit scales a srcW x srcH image uniformly so that it fully covers a
// dstW x dstH canvas and centers the overflow. srcH must be non-zero.
func CoverFit(srcW, srcH, dstW, dstH float64) Geometry {
	srcAspect := srcW / srcH
	dstAspect := dstW / dstH

	if srcAspect > dstAspect {
		// Relatively wider: fit height, crop the sides.
		drawW := dstH * srcAspect
		return Geometry{
			DrawWidth:  drawW,
			DrawHeight: dstH,
			OffsetX:    -(drawW - dstW) / 2,
			OffsetY:    0,
		}
	}
	// Relatively taller: fit width, crop top and bottom.
	drawH := dstW / srcAspect
	return Geometry{
		DrawWidth:  dstW,
		DrawHeight: drawH,
		OffsetX:    0,
		OffsetY:    -(drawH - dstH) / 2,
	}
}

// Rect rounds the geometry to the destination rectangle used when scaling
// the source onto the canvas. Parts outside the canvas are clipped by the
// draw call.
func (g Geometry) Rect() image.Rectangle {
	x0 := roundInt(g.OffsetX)
	y0 := roundInt(g.OffsetY)
	return image.Rect(x0, y0, x0+roundInt(g.DrawWidth), y0+roundInt(g.DrawHeight))
}

func roundInt(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}
