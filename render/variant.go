package render

import (
	"image/color"
	"path/filepath"
)

// Format is the encoding of a rendered variant.
type Format int

const (
	FormatJPEG Format = iota
	FormatPNG
)

func (f Format) String() string {
	if f == FormatPNG {
		return "png"
	}
	return "jpeg"
}

// TextSource selects which configured string a text block draws.
type TextSource int

const (
	TextTitle TextSource = iota
	TextLabel
	TextTagline
	TextSiteName
	TextSiteTagline
)

// TextBlock is a run of text that may wrap. Y is the position of the first
// line (baseline, or center when Style.Middle); each further line moves
// down by LineHeight. A zero MaxWidth disables wrapping.
type TextBlock struct {
	Source     TextSource
	X, Y       float64
	LineHeight float64
	MaxWidth   float64
	Style      TextStyle
}

// Rule is a filled accent bar. X is its left edge, or its center when
// Align is AlignCenter.
type Rule struct {
	X             float64
	Width, Height float64
	Align         Align
	Color         color.NRGBA
}

// Block is one element stacked under the head of a Flow. Exactly one of
// Text and Rule is set. Its Y is derived from the element above it.
type Block struct {
	Gap  float64
	Text *TextBlock
	Rule *Rule
}

// Flow is a top-to-bottom chain: Head starts at Head.Y and every Block is
// placed Gap below the bottom of the previous element, so a head that
// wraps onto more lines pushes every block down.
type Flow struct {
	Head  TextBlock
	Below []Block
}

// Variant is the full configuration of one output image.
type Variant struct {
	Name    string
	Width   int
	Height  int
	Format  Format
	Quality int // JPEG quality; ignored for PNG

	Suffix   string // appended to the slug for post variants
	Filename string // fixed output name for site variants

	Cover  bool // draw the source image as a cover-fit background
	Paints []Paint
	Logo   *Logo
	Label  *TextBlock
	Flow   *Flow
	Fixed  []TextBlock
}

// OutputName is the file name the variant writes for slug.
func (v Variant) OutputName(slug string) string {
	if v.Filename != "" {
		return v.Filename
	}
	return slug + v.Suffix
}

// OutputPath joins dir with the variant's output name for slug.
func (v Variant) OutputPath(dir, slug string) string {
	return filepath.Join(dir, v.OutputName(slug))
}

// Brand holds the strings drawn by the variants.
type Brand struct {
	Label       string `toml:"label"`        // uppercase wordmark next to the logo
	Tagline     string `toml:"tagline"`      // post card footer
	SiteName    string `toml:"site_name"`    // site card headline
	SiteTagline string `toml:"site_tagline"` // site card subline
	LogoPath    string `toml:"logo"`         // optional raster logo for site cards
}

// DefaultBrand returns the Withstain brand strings.
func DefaultBrand() Brand {
	return Brand{
		Label:       "WITHSTAIN",
		Tagline:     "Evidence-based longevity through modern science",
		SiteName:    "Withstain",
		SiteTagline: "Practical, resilient longevity through modern science",
	}
}

// Design system colors.
var (
	zinc900 = Hex("#18181b")
	zinc300 = Hex("#d4d4d8")
	zinc100 = Hex("#fafafa")
	lime300 = Hex("#a3e635")

	paper     = Hex("#ffffff")
	ink       = Hex("#1a1a1a")
	inkMuted  = Hex("#5c5c5c")
	crimson   = Hex("#c41e3a")
	textShade = WithAlpha(color.NRGBA{}, 0.1)
)

// Variant names.
const (
	Thumbnail   = "thumbnail"
	Hero        = "hero"
	OpenGraph   = "og"
	Twitter     = "twitter"
	SiteOG      = "site-og"
	SiteTwitter = "site-twitter"
)

// PostVariants returns the four per-post variants in render order.
func PostVariants() []Variant {
	return []Variant{
		thumbnailVariant(),
		heroVariant(),
		cardVariant(OpenGraph, 1200, 630, "-og.png", cardMetrics{
			pad: 80, top: 60, logoHeight: 32, labelCenter: 16, labelGap: 40, labelSize: 24,
			titleSize: 64, titleLineHeight: 75, titleOffset: 120,
			ruleGap: 40, ruleWidth: 160, taglineSize: 22, bottom: 60,
			glow: RadialGradient{CX: 1100, CY: 100, Radius: 300, Area: &Rect{X: 700, Y: 0, W: 500, H: 300}},
		}),
		cardVariant(Twitter, 800, 800, "-twitter.png", cardMetrics{
			pad: 60, top: 50, logoHeight: 27, labelCenter: 14, labelGap: 35, labelSize: 20,
			titleSize: 52, titleLineHeight: 62, titleOffset: 100,
			ruleGap: 35, ruleWidth: 120, taglineSize: 18, bottom: 50,
			glow: RadialGradient{CX: 700, CY: 80, Radius: 250, Area: &Rect{X: 500, Y: 0, W: 300, H: 250}},
		}),
	}
}

// SiteVariants returns the site-wide share cards.
func SiteVariants() []Variant {
	return []Variant{
		siteVariant(SiteOG, 1200, 630, "og-image.png", siteMetrics{
			logoHeight: 80, logoRise: 120, nameSize: 72, nameDrop: 20, nameLineHeight: 70,
			taglineSize: 24, taglineLineHeight: 40, ruleGap: 0, ruleWidth: 120,
			glows: []RadialGradient{
				{CX: 1000, CY: 100, Radius: 300, Area: &Rect{X: 700, Y: 0, W: 500, H: 300}},
				{CX: 200, CY: 530, Radius: 250, Area: &Rect{X: 0, Y: 330, W: 400, H: 300}},
			},
		}),
		siteVariant(SiteTwitter, 800, 800, "twitter-image.png", siteMetrics{
			logoHeight: 70, logoRise: 110, nameSize: 60, nameDrop: 10, nameLineHeight: 65,
			taglineSize: 20, taglineLineHeight: 30, taglineWidth: 340, ruleGap: 5, ruleWidth: 100,
			glows: []RadialGradient{
				{CX: 650, CY: 100, Radius: 250, Area: &Rect{X: 450, Y: 0, W: 350, H: 250}},
				{CX: 150, CY: 700, Radius: 200, Area: &Rect{X: 0, Y: 550, W: 300, H: 250}},
			},
		}),
	}
}

// VariantByName finds a post or site variant.
func VariantByName(name string) (Variant, bool) {
	for _, v := range append(PostVariants(), SiteVariants()...) {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

func thumbnailVariant() Variant {
	return Variant{
		Name:    Thumbnail,
		Width:   350,
		Height:  350,
		Format:  FormatJPEG,
		Quality: 80,
		Suffix:  "-thumb.jpg",
		Cover:   true,
		Paints: []Paint{
			Vertical(
				Stop{Offset: 0, Color: WithAlpha(zinc900, 0)},
				Stop{Offset: 1, Color: WithAlpha(zinc900, 0.6)},
			),
		},
	}
}

func heroVariant() Variant {
	mark := WithAlpha(lime300, 0.7)
	return Variant{
		Name:    Hero,
		Width:   1200,
		Height:  630,
		Format:  FormatJPEG,
		Quality: 98,
		Suffix:  "-hero.jpg",
		Cover:   true,
		Paints: []Paint{
			Vertical(
				Stop{Offset: 0, Color: WithAlpha(zinc900, 0.4)},
				Stop{Offset: 0.6, Color: WithAlpha(zinc900, 0.6)},
				Stop{Offset: 1, Color: WithAlpha(zinc900, 0.85)},
			),
			RadialGradient{CX: 150, CY: 150, Radius: 250, Stops: []Stop{
				{Offset: 0, Color: WithAlpha(lime300, 0.12)},
				{Offset: 1, Color: Transparent},
			}},
		},
		Logo: &Logo{X: 80, Y: 60, Height: 32, Color: mark},
		Label: &TextBlock{
			Source: TextLabel, X: 120, Y: 76,
			Style: TextStyle{Font: FontBold, Size: 24, Color: mark, Middle: true, Tracking: 0.1},
		},
	}
}

type cardMetrics struct {
	pad, top                   float64
	logoHeight, labelCenter    float64
	labelGap, labelSize        float64
	titleSize, titleLineHeight float64
	titleOffset                float64
	ruleGap, ruleWidth         float64
	taglineSize, bottom        float64
	glow                       RadialGradient
}

func cardVariant(name string, w, h int, suffix string, m cardMetrics) Variant {
	glow := m.glow
	glow.Stops = []Stop{
		{Offset: 0, Color: WithAlpha(lime300, float64(0x15)/255)},
		{Offset: 1, Color: Transparent},
	}
	center := m.top + m.labelCenter
	return Variant{
		Name:   name,
		Width:  w,
		Height: h,
		Format: FormatPNG,
		Suffix: suffix,
		Cover:  true,
		Paints: []Paint{
			Vertical(
				Stop{Offset: 0, Color: WithAlpha(zinc900, float64(0xDD)/255)},
				Stop{Offset: 1, Color: WithAlpha(zinc900, float64(0xF5)/255)},
			),
			glow,
		},
		Logo: &Logo{X: m.pad, Y: m.top, Height: m.logoHeight, Color: lime300},
		Label: &TextBlock{
			Source: TextLabel, X: m.pad + m.labelGap, Y: center,
			Style: TextStyle{Font: FontBold, Size: m.labelSize, Color: lime300, Middle: true, Tracking: 0.1},
		},
		Flow: &Flow{
			Head: TextBlock{
				Source:     TextTitle,
				X:          m.pad,
				Y:          m.top + m.titleOffset,
				LineHeight: m.titleLineHeight,
				MaxWidth:   float64(w) - 2*m.pad,
				Style:      TextStyle{Font: FontExtraBold, Size: m.titleSize, Color: zinc100},
			},
			Below: []Block{
				{Gap: m.ruleGap, Rule: &Rule{X: m.pad, Width: m.ruleWidth, Height: 4, Color: lime300}},
			},
		},
		Fixed: []TextBlock{{
			Source: TextTagline,
			X:      m.pad,
			Y:      float64(h) - m.bottom,
			Style:  TextStyle{Font: FontRegular, Size: m.taglineSize, Color: zinc300},
		}},
	}
}

type siteMetrics struct {
	logoHeight, logoRise               float64
	nameSize, nameDrop, nameLineHeight float64
	taglineSize, taglineLineHeight     float64
	taglineWidth                       float64
	ruleGap, ruleWidth                 float64
	glows                              []RadialGradient
}

func siteVariant(name string, w, h int, filename string, m siteMetrics) Variant {
	cx := float64(w) / 2
	cy := float64(h) / 2

	paints := []Paint{Solid{Color: paper}}
	for i, g := range m.glows {
		alpha := float64(0x08) / 255
		if i > 0 {
			alpha = float64(0x05) / 255
		}
		g.Stops = []Stop{
			{Offset: 0, Color: WithAlpha(crimson, alpha)},
			{Offset: 1, Color: Transparent},
		}
		paints = append(paints, g)
	}

	return Variant{
		Name:     name,
		Width:    w,
		Height:   h,
		Format:   FormatPNG,
		Filename: filename,
		Paints:   paints,
		Logo:     &Logo{X: cx, Y: cy - m.logoRise, Height: m.logoHeight, Centered: true, Raster: true, Color: crimson},
		Flow: &Flow{
			Head: TextBlock{
				Source:     TextSiteName,
				X:          cx,
				Y:          cy + m.nameDrop,
				LineHeight: m.nameLineHeight,
				Style: TextStyle{
					Font: FontBlack, Size: m.nameSize, Color: ink, Align: AlignCenter, Middle: true,
					Shadow: &Shadow{Color: textShade, OffsetY: 2, Blur: 4},
				},
			},
			Below: []Block{
				{Text: &TextBlock{
					Source:     TextSiteTagline,
					X:          cx,
					LineHeight: m.taglineLineHeight,
					MaxWidth:   m.taglineWidth,
					Style:      TextStyle{Font: FontRegular, Size: m.taglineSize, Color: inkMuted, Align: AlignCenter, Middle: true},
				}},
				{Gap: m.ruleGap, Rule: &Rule{X: cx, Width: m.ruleWidth, Height: 3, Align: AlignCenter, Color: crimson}},
			},
		},
	}
}
