package render

import (
	"image"
	"math"
	"testing"
)

func TestCoverFitWideSource(t *testing.T) {
	g := CoverFit(2000, 1000, 1200, 630)

	if g.DrawHeight != 630 {
		t.Fatalf("expected draw height 630, got %v", g.DrawHeight)
	}
	if g.DrawWidth != 1260 {
		t.Fatalf("expected draw width 1260, got %v", g.DrawWidth)
	}
	if g.OffsetX != -30 || g.OffsetY != 0 {
		t.Fatalf("expected offset (-30, 0), got (%v, %v)", g.OffsetX, g.OffsetY)
	}
}

func TestCoverFitTallSource(t *testing.T) {
	g := CoverFit(1000, 2000, 350, 350)

	if g.DrawWidth != 350 {
		t.Fatalf("expected draw width 350, got %v", g.DrawWidth)
	}
	if g.DrawHeight != 700 {
		t.Fatalf("expected draw height 700, got %v", g.DrawHeight)
	}
	if g.OffsetX != 0 || g.OffsetY != -175 {
		t.Fatalf("expected offset (0, -175), got (%v, %v)", g.OffsetX, g.OffsetY)
	}
}

func TestCoverFitSameAspect(t *testing.T) {
	g := CoverFit(2400, 1260, 1200, 630)

	if math.Abs(g.DrawWidth-1200) > 1e-9 || math.Abs(g.DrawHeight-630) > 1e-9 {
		t.Fatalf("expected exact fit, got %vx%v", g.DrawWidth, g.DrawHeight)
	}
	if math.Abs(g.OffsetX) > 1e-9 || math.Abs(g.OffsetY) > 1e-9 {
		t.Fatalf("expected zero offset, got (%v, %v)", g.OffsetX, g.OffsetY)
	}
}

func TestCoverFitProperties(t *testing.T) {
	sources := [][2]float64{{1, 1}, {640, 480}, {480, 640}, {4000, 1000}, {17, 3000}, {1200, 630}}
	targets := [][2]float64{{350, 350}, {1200, 630}, {800, 800}}
	const eps = 1e-6

	for _, src := range sources {
		for _, dst := range targets {
			g := CoverFit(src[0], src[1], dst[0], dst[1])

			if g.DrawWidth < dst[0]-eps || g.DrawHeight < dst[1]-eps {
				t.Errorf("%v -> %v: draw %vx%v does not cover", src, dst, g.DrawWidth, g.DrawHeight)
			}
			if math.Abs(g.DrawWidth-dst[0]) > eps && math.Abs(g.DrawHeight-dst[1]) > eps {
				t.Errorf("%v -> %v: neither axis matches the target", src, dst)
			}
			if math.Abs(g.DrawWidth/g.DrawHeight-src[0]/src[1]) > 1e-9 {
				t.Errorf("%v -> %v: aspect not preserved", src, dst)
			}
			if math.Abs(g.OffsetX+(g.DrawWidth-dst[0])/2) > eps || math.Abs(g.OffsetY+(g.DrawHeight-dst[1])/2) > eps {
				t.Errorf("%v -> %v: overflow not centered, offset (%v, %v)", src, dst, g.OffsetX, g.OffsetY)
			}
			if g.OffsetX > 0 || g.OffsetY > 0 {
				t.Errorf("%v -> %v: positive offset (%v, %v)", src, dst, g.OffsetX, g.OffsetY)
			}
		}
	}
}

func TestGeometryRect(t *testing.T) {
	got := CoverFit(2000, 1000, 1200, 630).Rect()
	want := image.Rect(-30, 0, 1230, 630)
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
