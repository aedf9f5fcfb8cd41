package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontRole names a weight used by the variant table.
type FontRole int

const (
	FontRegular FontRole = iota
	FontMedium
	FontBold
	FontExtraBold
	FontBlack
)

func (r FontRole) String() string {
	switch r {
	case FontRegular:
		return "regular"
	case FontMedium:
		return "medium"
	case FontBold:
		return "bold"
	case FontExtraBold:
		return "extrabold"
	case FontBlack:
		return "black"
	}
	return fmt.Sprintf("FontRole(%d)", int(r))
}

// FontFiles holds optional TTF/OTF paths per role. An empty path selects
// the embedded Go font for that role.
type FontFiles struct {
	Regular   string `toml:"regular"`
	Medium    string `toml:"medium"`
	Bold      string `toml:"bold"`
	ExtraBold string `toml:"extrabold"`
	Black     string `toml:"black"`
}

func (f FontFiles) path(r FontRole) string {
	switch r {
	case FontRegular:
		return f.Regular
	case FontMedium:
		return f.Medium
	case FontBold:
		return f.Bold
	case FontExtraBold:
		return f.ExtraBold
	case FontBlack:
		return f.Black
	}
	return ""
}

var embeddedFonts = map[FontRole][]byte{
	FontRegular:   goregular.TTF,
	FontMedium:    gomedium.TTF,
	FontBold:      gobold.TTF,
	FontExtraBold: gobold.TTF,
	FontBlack:     gobold.TTF,
}

type faceKey struct {
	role FontRole
	size float64
}

// Fonts holds the parsed font per role and caches faces by size.
type Fonts struct {
	mu    sync.Mutex
	fonts map[FontRole]*opentype.Font
	faces map[faceKey]font.Face
}

// LoadFonts parses every role's font. A configured path that cannot be
// read or parsed is an error; there is no silent fallback for it.
func LoadFonts(files FontFiles) (*Fonts, error) {
	f := &Fonts{
		fonts: make(map[FontRole]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
	for role, data := range embeddedFonts {
		if p := files.path(role); p != "" {
			custom, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("read %s font: %w", role, err)
			}
			data = custom
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s font: %w", role, err)
		}
		f.fonts[role] = parsed
	}
	return f, nil
}

// Face returns the face for role at size pixels (72 DPI).
func (f *Fonts) Face(role FontRole, size float64) (font.Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := faceKey{role: role, size: size}
	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	parsed, ok := f.fonts[role]
	if !ok {
		return nil, fmt.Errorf("no font loaded for role %s", role)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s face at %.1fpx: %w", role, size, err)
	}
	f.faces[key] = face
	return face, nil
}
