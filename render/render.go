// Package render composes the branded share images for blog posts and the
// site: a cover-fit background photo, gradient overlays, the brand mark,
// and wrapped title text, encoded as JPEG or PNG.
//
// Every output is described by a Variant from a static table, and a single
// pipeline renders any of them:
//
//	decode -> cover-fit -> background -> paints -> logo -> text -> encode -> write
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrNoBackground is returned when a cover variant is rendered without a
// source image.
var ErrNoBackground = errors.New("render: variant needs a background image")

// Request asks for every post variant of one post.
type Request struct {
	SourcePath string
	Title      string
	OutputDir  string
	Slug       string
}

// Output describes one written file.
type Output struct {
	Variant string
	Path    string
	Width   int
	Height  int
	Size    int
}

// Renderer draws variants. It is not safe for concurrent use.
type Renderer struct {
	fonts    *Fonts
	brand    Brand
	logo     image.Image
	variants []Variant
	logger   *log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFonts sets the fonts used for every text layer.
func WithFonts(f *Fonts) Option {
	return func(r *Renderer) {
		r.fonts = f
	}
}

// WithBrand sets the strings and optional raster logo.
func WithBrand(b Brand) Option {
	return func(r *Renderer) {
		r.brand = b
	}
}

// WithVariants replaces the post variant table.
func WithVariants(v []Variant) Option {
	return func(r *Renderer) {
		r.variants = v
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// New creates a Renderer. Without WithFonts the embedded Go fonts are used.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		brand:    DefaultBrand(),
		variants: PostVariants(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.fonts == nil {
		fonts, err := LoadFonts(FontFiles{})
		if err != nil {
			return nil, err
		}
		r.fonts = fonts
	}

	if r.brand.LogoPath != "" {
		logo, err := Decode(r.brand.LogoPath)
		if err != nil {
			return nil, fmt.Errorf("load logo: %w", err)
		}
		r.logo = logo
	}
	return r, nil
}

// Variants returns the post variants this renderer produces.
func (r *Renderer) Variants() []Variant {
	return r.variants
}

// Decode opens a JPEG, PNG, GIF or WebP file, applying EXIF orientation.
func Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Render decodes req.SourcePath once and writes every post variant into
// req.OutputDir. The first failure aborts the run; files already written
// are left in place.
func (r *Renderer) Render(ctx context.Context, req Request) ([]Output, error) {
	src, err := Decode(req.SourcePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	outputs := make([]Output, 0, len(r.variants))
	for _, v := range r.variants {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		img, err := r.RenderVariant(src, req.Title, v)
		if err != nil {
			return outputs, fmt.Errorf("render %s: %w", v.Name, err)
		}
		out, err := writeImage(v.OutputPath(req.OutputDir, req.Slug), img, v)
		if err != nil {
			return outputs, fmt.Errorf("write %s: %w", v.Name, err)
		}
		r.logger.Debug("rendered variant", "variant", v.Name, "path", out.Path, "bytes", out.Size)
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// RenderSite writes the site-wide share cards into dir.
func (r *Renderer) RenderSite(ctx context.Context, dir string) ([]Output, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var outputs []Output
	for _, v := range SiteVariants() {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		img, err := r.RenderVariant(nil, "", v)
		if err != nil {
			return outputs, fmt.Errorf("render %s: %w", v.Name, err)
		}
		out, err := writeImage(v.OutputPath(dir, ""), img, v)
		if err != nil {
			return outputs, fmt.Errorf("write %s: %w", v.Name, err)
		}
		r.logger.Debug("rendered variant", "variant", v.Name, "path", out.Path, "bytes", out.Size)
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// RenderVariant composes one variant in memory. bg may be nil for
// variants that do not draw a cover background.
func (r *Renderer) RenderVariant(bg image.Image, title string, v Variant) (image.Image, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	if v.Cover {
		if bg == nil {
			return nil, ErrNoBackground
		}
		drawCover(canvas, bg)
	}

	dc := gg.NewContextForRGBA(canvas)
	for _, p := range v.Paints {
		p.Apply(dc)
	}

	if v.Logo != nil {
		var raster image.Image
		if v.Logo.Raster {
			raster = r.logo
		}
		drawLogo(dc, *v.Logo, raster)
	}

	plan, err := r.Plan(v, title)
	if err != nil {
		return nil, err
	}
	for _, t := range plan.Texts {
		face, err := r.fonts.Face(t.Style.Font, t.Style.Size)
		if err != nil {
			return nil, err
		}
		drawText(dc, face, t.Style, t.Text, t.X, t.Y)
	}
	for _, rule := range plan.Rules {
		dc.SetColor(rule.Color)
		dc.DrawRectangle(rule.X, rule.Y, rule.Width, rule.Height)
		dc.Fill()
	}
	return dc.Image(), nil
}

// drawCover scales src over canvas using cover-fit geometry; the overflow
// falls outside the canvas and is clipped.
func drawCover(canvas *image.RGBA, src image.Image) {
	sb := src.Bounds()
	cb := canvas.Bounds()
	g := CoverFit(float64(sb.Dx()), float64(sb.Dy()), float64(cb.Dx()), float64(cb.Dy()))
	draw.CatmullRom.Scale(canvas, g.Rect(), src, sb, draw.Over, nil)
}

// PlacedText is a single line of text at its final position.
type PlacedText struct {
	Text  string
	X, Y  float64
	Style TextStyle
}

// PlacedRule is an accent bar at its final position.
type PlacedRule struct {
	X, Y          float64
	Width, Height float64
	Color         color.NRGBA
}

// Plan is the resolved text layout of a variant.
type Plan struct {
	HeadLines []string
	Texts     []PlacedText
	Rules     []PlacedRule
}

// Plan resolves the label, flow and fixed text of v for title without
// drawing anything.
func (r *Renderer) Plan(v Variant, title string) (Plan, error) {
	var p Plan
	scratch := gg.NewContext(1, 1)

	if v.Label != nil {
		lines, err := r.lines(scratch, *v.Label, title)
		if err != nil {
			return Plan{}, err
		}
		p.place(*v.Label, lines, v.Label.Y)
	}

	if v.Flow != nil {
		head := v.Flow.Head
		lines, err := r.lines(scratch, head, title)
		if err != nil {
			return Plan{}, err
		}
		p.HeadLines = lines
		cursor := p.place(head, lines, head.Y)

		for _, b := range v.Flow.Below {
			y := cursor + b.Gap
			switch {
			case b.Text != nil:
				lines, err := r.lines(scratch, *b.Text, title)
				if err != nil {
					return Plan{}, err
				}
				cursor = p.place(*b.Text, lines, y)
			case b.Rule != nil:
				x := b.Rule.X
				if b.Rule.Align == AlignCenter {
					x -= b.Rule.Width / 2
				}
				p.Rules = append(p.Rules, PlacedRule{
					X: x, Y: y, Width: b.Rule.Width, Height: b.Rule.Height, Color: b.Rule.Color,
				})
				cursor = y + b.Rule.Height
			}
		}
	}

	for _, tb := range v.Fixed {
		lines, err := r.lines(scratch, tb, title)
		if err != nil {
			return Plan{}, err
		}
		p.place(tb, lines, tb.Y)
	}
	return p, nil
}

// place appends lines of tb starting at y and returns the y just below
// the block.
func (p *Plan) place(tb TextBlock, lines []string, y float64) float64 {
	for i, line := range lines {
		p.Texts = append(p.Texts, PlacedText{
			Text:  line,
			X:     tb.X,
			Y:     y + float64(i)*tb.LineHeight,
			Style: tb.Style,
		})
	}
	return y + float64(len(lines))*tb.LineHeight
}

func (r *Renderer) lines(m *gg.Context, tb TextBlock, title string) ([]string, error) {
	text := r.text(tb.Source, title)
	if text == "" {
		return nil, nil
	}
	if tb.MaxWidth <= 0 {
		return []string{text}, nil
	}
	face, err := r.fonts.Face(tb.Style.Font, tb.Style.Size)
	if err != nil {
		return nil, err
	}
	m.SetFontFace(face)
	return WrapText(m, text, tb.MaxWidth), nil
}

func (r *Renderer) text(src TextSource, title string) string {
	switch src {
	case TextTitle:
		return title
	case TextLabel:
		return r.brand.Label
	case TextTagline:
		return r.brand.Tagline
	case TextSiteName:
		return r.brand.SiteName
	case TextSiteTagline:
		return r.brand.SiteTagline
	}
	return ""
}

// writeImage encodes img in the variant's format and writes it to path.
func writeImage(path string, img image.Image, v Variant) (Output, error) {
	var buf bytes.Buffer
	var err error
	switch v.Format {
	case FormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(v.Quality))
	}
	if err != nil {
		return Output{}, fmt.Errorf("encode %s: %w", v.Format, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Output{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return Output{}, fmt.Errorf("write image: %w", err)
	}

	b := img.Bounds()
	return Output{
		Variant: v.Name,
		Path:    path,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Size:    buf.Len(),
	}, nil
}
