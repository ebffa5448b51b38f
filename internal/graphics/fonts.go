// Package graphics draws text onto raster images for video stills and captions.
package graphics

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Fonts holds the parsed typefaces used for every drawn string.
type Fonts struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// LoadFonts parses the bundled Go fonts. A non-empty path replaces both the
// regular and bold faces with the TrueType/OpenType file it names.
func LoadFonts(path string) (*Fonts, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font %s: %w", path, err)
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
		}
		return &Fonts{regular: f, bold: f}, nil
	}

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &Fonts{regular: regular, bold: bold}, nil
}

// Face returns a face of the given pixel size.
func (f *Fonts) Face(size float64, bold bool) (font.Face, error) {
	if f == nil {
		return nil, fmt.Errorf("fonts not loaded")
	}
	src := f.regular
	if bold {
		src = f.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %.0fpx face: %w", size, err)
	}
	return face, nil
}

// FaceOrBasic is Face with a fixed bitmap face as the last resort.
func (f *Fonts) FaceOrBasic(size float64, bold bool) font.Face {
	face, err := f.Face(size, bold)
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
