package graphics

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Size is the pixel extent of a line of text.
type Size struct {
	Width  int
	Height int
}

// Measure returns the advance width and line height of s in face.
func Measure(face font.Face, s string) Size {
	m := face.Metrics()
	return Size{
		Width:  font.MeasureString(face, s).Ceil(),
		Height: (m.Ascent + m.Descent).Ceil(),
	}
}

// DrawText draws s with its top-left corner at (x, y).
func DrawText(dst draw.Image, face font.Face, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + face.Metrics().Ascent},
	}
	d.DrawString(s)
}

// DrawShadowed draws s over a copy of itself shifted by offset pixels.
func DrawShadowed(dst draw.Image, face font.Face, x, y, offset int, s string, fill, shadow color.Color) {
	DrawText(dst, face, x+offset, y+offset, s, shadow)
	DrawText(dst, face, x, y, s, fill)
}

// DrawOutlined draws s ringed by a stroke of the given width.
func DrawOutlined(dst draw.Image, face font.Face, x, y, width int, s string, fill, stroke color.Color) {
	for dy := -width; dy <= width; dy++ {
		for dx := -width; dx <= width; dx++ {
			if (dx == 0 && dy == 0) || dx*dx+dy*dy > width*width {
				continue
			}
			DrawText(dst, face, x+dx, y+dy, s, stroke)
		}
	}
	DrawText(dst, face, x, y, s, fill)
}

// Wrap breaks text on spaces so no line is wider than maxWidth. A single
// word wider than maxWidth gets a line to itself.
func Wrap(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if Measure(face, candidate).Width <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = w
	}
	return append(lines, current)
}

// Center returns the x offset that centres width inside total.
func Center(total, width int) int {
	return (total - width) / 2
}
