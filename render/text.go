package render

import (
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Measurer reports the rendered size of a string in the current font.
// *gg.Context satisfies it.
type Measurer interface {
	MeasureString(s string) (w, h float64)
}

// WrapText breaks text into lines no wider than maxWidth using greedy
// packing: a word joins the current line only while the joined line
// measures strictly less than maxWidth. A single word wider than maxWidth
// is never split and takes a line of its own. Blank text yields no lines.
func WrapText(m Measurer, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if w, _ := m.MeasureString(candidate); w < maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// Align is the horizontal anchor of a text line relative to its x position.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

func (a Align) anchor() float64 {
	if a == AlignCenter {
		return 0.5
	}
	return 0
}

// Shadow is a blurred copy of the text drawn underneath it.
type Shadow struct {
	Color   color.NRGBA
	OffsetX float64
	OffsetY float64
	Blur    float64
}

// TextStyle describes how a run of text is set. Y positions are the
// alphabetic baseline unless Middle is set, in which case they are the
// vertical center of the line.
type TextStyle struct {
	Font     FontRole
	Size     float64
	Color    color.NRGBA
	Align    Align
	Middle   bool
	Tracking float64 // extra space after each rune, in em
	Shadow   *Shadow
}

// drawText draws s at (x, y) on dc using face, honoring the style's
// alignment, tracking and shadow.
func drawText(dc *gg.Context, face font.Face, st TextStyle, s string, x, y float64) {
	if st.Shadow != nil {
		layer := gg.NewContext(dc.Width(), dc.Height())
		layer.SetFontFace(face)
		layer.SetColor(st.Shadow.Color)
		drawRun(layer, st, s, x+st.Shadow.OffsetX, y+st.Shadow.OffsetY)

		shadow := layer.Image()
		if st.Shadow.Blur > 0 {
			// A canvas blur radius corresponds to roughly twice the Gaussian sigma.
			shadow = imaging.Blur(shadow, st.Shadow.Blur/2)
		}
		dc.DrawImage(shadow, 0, 0)
	}

	dc.SetFontFace(face)
	dc.SetColor(st.Color)
	drawRun(dc, st, s, x, y)
}

func drawRun(dc *gg.Context, st TextStyle, s string, x, y float64) {
	ay := 0.0
	if st.Middle {
		ay = 0.5
	}
	if st.Tracking == 0 {
		dc.DrawStringAnchored(s, x, y, st.Align.anchor(), ay)
		return
	}

	track := st.Tracking * st.Size
	runes := []rune(s)
	widths := make([]float64, len(runes))
	total := 0.0
	for i, r := range runes {
		widths[i], _ = dc.MeasureString(string(r))
		total += widths[i]
	}
	if len(runes) > 1 {
		total += track * float64(len(runes)-1)
	}

	cx := x - st.Align.anchor()*total
	for i, r := range runes {
		dc.DrawStringAnchored(string(r), cx, y, 0, ay)
		cx += widths[i] + track
	}
}
