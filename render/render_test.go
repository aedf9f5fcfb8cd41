package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

const longTitle = "Why Sleep Is the Most Underrated Longevity Intervention of the Decade"

func newTestRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(os.Stderr))}, opts...)
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func writeSource(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	path := filepath.Join(dir, "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode source: %v", err)
	}
	return path
}

func variant(t *testing.T, name string) Variant {
	t.Helper()
	v, ok := VariantByName(name)
	if !ok {
		t.Fatalf("variant %q not found", name)
	}
	return v
}

func TestPostVariantTable(t *testing.T) {
	want := []struct {
		name   string
		w, h   int
		format Format
		output string
	}{
		{Thumbnail, 350, 350, FormatJPEG, "post-thumb.jpg"},
		{Hero, 1200, 630, FormatJPEG, "post-hero.jpg"},
		{OpenGraph, 1200, 630, FormatPNG, "post-og.png"},
		{Twitter, 800, 800, FormatPNG, "post-twitter.png"},
	}
	got := PostVariants()
	if len(got) != len(want) {
		t.Fatalf("expected %d post variants, got %d", len(want), len(got))
	}
	for i, w := range want {
		v := got[i]
		if v.Name != w.name || v.Width != w.w || v.Height != w.h || v.Format != w.format {
			t.Errorf("variant %d: got %s %dx%d %s", i, v.Name, v.Width, v.Height, v.Format)
		}
		if name := v.OutputName("post"); name != w.output {
			t.Errorf("variant %s: expected output %q, got %q", v.Name, w.output, name)
		}
	}
}

func TestSiteVariantNames(t *testing.T) {
	if got := variant(t, SiteOG).OutputName("ignored"); got != "og-image.png" {
		t.Fatalf("expected og-image.png, got %q", got)
	}
	if got := variant(t, SiteTwitter).OutputName(""); got != "twitter-image.png" {
		t.Fatalf("expected twitter-image.png, got %q", got)
	}
	if _, ok := VariantByName("poster"); ok {
		t.Fatalf("unknown variant should not be found")
	}
}

func TestPlanTaglineFixedAndRuleFollowsTitle(t *testing.T) {
	r := newTestRenderer(t)
	v := variant(t, OpenGraph)

	short, err := r.Plan(v, "Zone 2")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	long, err := r.Plan(v, longTitle)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if len(short.HeadLines) != 1 {
		t.Fatalf("expected one line for short title, got %q", short.HeadLines)
	}
	if len(long.HeadLines) < 2 {
		t.Fatalf("expected long title to wrap at 64px within 1040px, got %q", long.HeadLines)
	}

	extra := float64(len(long.HeadLines)-len(short.HeadLines)) * 75
	if got := long.Rules[0].Y - short.Rules[0].Y; got != extra {
		t.Fatalf("expected rule to move down %v, moved %v", extra, got)
	}
	if short.Rules[0].Y != 180+75+40 {
		t.Fatalf("expected rule at 295 for a one-line title, got %v", short.Rules[0].Y)
	}

	tagline := func(p Plan) PlacedText {
		for _, pt := range p.Texts {
			if pt.Text == DefaultBrand().Tagline {
				return pt
			}
		}
		t.Fatalf("tagline not placed")
		return PlacedText{}
	}
	if tagline(short).Y != 570 || tagline(long).Y != 570 {
		t.Fatalf("expected tagline pinned at 570, got %v and %v", tagline(short).Y, tagline(long).Y)
	}
}

func TestPlanTitleLinesWithinWidth(t *testing.T) {
	r := newTestRenderer(t)
	v := variant(t, Twitter)

	p, err := r.Plan(v, longTitle)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	face, err := r.fonts.Face(FontExtraBold, 52)
	if err != nil {
		t.Fatalf("Face failed: %v", err)
	}
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	for _, line := range p.HeadLines {
		if w, _ := dc.MeasureString(line); w >= 680 && strings.Contains(line, " ") {
			t.Errorf("line %q is %vpx wide, max 680", line, w)
		}
	}
	if strings.Join(p.HeadLines, " ") != longTitle {
		t.Fatalf("wrapped lines do not rejoin to the title: %q", p.HeadLines)
	}
}

func TestPlanEmptyTitle(t *testing.T) {
	r := newTestRenderer(t)

	p, err := r.Plan(variant(t, OpenGraph), "")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(p.HeadLines) != 0 {
		t.Fatalf("expected no title lines, got %q", p.HeadLines)
	}
	if p.Rules[0].Y != 180+40 {
		t.Fatalf("expected rule directly under the title origin, got %v", p.Rules[0].Y)
	}
}

func TestPlanLabelCenteredOnBranding(t *testing.T) {
	r := newTestRenderer(t)

	tests := []struct {
		name  string
		wantY float64
	}{
		{OpenGraph, 60 + 16},
		{Twitter, 50 + 14},
	}
	for _, tt := range tests {
		p, err := r.Plan(variant(t, tt.name), "Zone 2")
		if err != nil {
			t.Fatalf("%s: Plan failed: %v", tt.name, err)
		}
		label := p.Texts[0]
		if label.Text != "WITHSTAIN" {
			t.Fatalf("%s: expected label first, got %q", tt.name, label.Text)
		}
		if label.Y != tt.wantY {
			t.Errorf("%s: label center = %v, want %v", tt.name, label.Y, tt.wantY)
		}
	}
}

func TestPlanSiteRuleCentered(t *testing.T) {
	r := newTestRenderer(t)

	p, err := r.Plan(variant(t, SiteOG), "")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(p.Rules) != 1 {
		t.Fatalf("expected one rule, got %d", len(p.Rules))
	}
	if p.Rules[0].X != 600-60 {
		t.Fatalf("expected rule centered at 540, got %v", p.Rules[0].X)
	}
	if p.Texts[0].Text != "Withstain" {
		t.Fatalf("expected site name first, got %q", p.Texts[0].Text)
	}
}

func TestRenderVariantDimensions(t *testing.T) {
	r := newTestRenderer(t)
	src := image.NewNRGBA(image.Rect(0, 0, 640, 1280))

	for _, v := range append(PostVariants(), SiteVariants()...) {
		img, err := r.RenderVariant(src, longTitle, v)
		if err != nil {
			t.Fatalf("%s: RenderVariant failed: %v", v.Name, err)
		}
		b := img.Bounds()
		if b.Dx() != v.Width || b.Dy() != v.Height {
			t.Errorf("%s: expected %dx%d, got %dx%d", v.Name, v.Width, v.Height, b.Dx(), b.Dy())
		}
	}
}

func TestRenderVariantNeedsBackground(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.RenderVariant(nil, "Title", variant(t, Hero))
	if !errors.Is(err, ErrNoBackground) {
		t.Fatalf("expected ErrNoBackground, got %v", err)
	}
}

func TestRenderWritesAllVariants(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer(t)
	src := writeSource(t, dir, 2000, 1000)
	out := filepath.Join(dir, "out")

	outputs, err := r.Render(context.Background(), Request{
		SourcePath: src,
		Title:      longTitle,
		OutputDir:  out,
		Slug:       "sleep",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(outputs) != 4 {
		t.Fatalf("expected 4 outputs, got %d", len(outputs))
	}

	for _, o := range outputs {
		v := variant(t, o.Variant)
		img, err := imaging.Open(o.Path)
		if err != nil {
			t.Fatalf("%s: open output: %v", o.Variant, err)
		}
		if b := img.Bounds(); b.Dx() != v.Width || b.Dy() != v.Height {
			t.Errorf("%s: file is %dx%d, expected %dx%d", o.Variant, b.Dx(), b.Dy(), v.Width, v.Height)
		}
		if o.Size == 0 {
			t.Errorf("%s: reported zero size", o.Variant)
		}
	}

	for _, name := range []string{"sleep-thumb.jpg", "sleep-hero.jpg", "sleep-og.png", "sleep-twitter.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRenderMissingSource(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Render(context.Background(), Request{
		SourcePath: filepath.Join(t.TempDir(), "nope.jpg"),
		Title:      "Title",
		OutputDir:  t.TempDir(),
		Slug:       "nope",
	})
	if err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestRenderCanceled(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer(t)
	src := writeSource(t, dir, 64, 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outputs, err := r.Render(ctx, Request{SourcePath: src, Title: "T", OutputDir: dir, Slug: "t"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(outputs) != 0 {
		t.Fatalf("expected no outputs, got %d", len(outputs))
	}
}

func TestRenderSite(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer(t)

	outputs, err := r.RenderSite(context.Background(), dir)
	if err != nil {
		t.Fatalf("RenderSite failed: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(outputs))
	}
	for _, name := range []string{"og-image.png", "twitter-image.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestNewRejectsMissingLogo(t *testing.T) {
	b := DefaultBrand()
	b.LogoPath = filepath.Join(t.TempDir(), "logo.png")

	if _, err := New(WithBrand(b)); err == nil {
		t.Fatalf("expected error for missing logo file")
	}
}

func TestLoadFontsRejectsMissingFile(t *testing.T) {
	_, err := LoadFonts(FontFiles{Bold: filepath.Join(t.TempDir(), "missing.ttf")})
	if err == nil {
		t.Fatalf("expected error for missing font file")
	}
}

func TestHex(t *testing.T) {
	if got := Hex("#a3e635"); got != (color.NRGBA{R: 0xa3, G: 0xe6, B: 0x35, A: 0xff}) {
		t.Fatalf("unexpected color %v", got)
	}
	if got := Hex("bogus"); got != (color.NRGBA{A: 0xff}) {
		t.Fatalf("expected opaque black for malformed input, got %v", got)
	}
}
