package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"brand-video-backend/internal/graphics"
	"brand-video-backend/internal/visuals"
)

const (
	captionSize   = 40
	captionWidth  = 1200
	captionStroke = 2
	lineSpacing   = 8
)

// writeCaption draws text centred on a transparent frame-sized PNG.
func (r *Renderer) writeCaption(path, text string) error {
	face := r.fonts.FaceOrBasic(captionSize, true)
	defer face.Close()

	img := image.NewNRGBA(image.Rect(0, 0, visuals.Width, visuals.Height))

	lines := graphics.Wrap(face, text, captionWidth)
	if len(lines) > 0 {
		lineHeight := graphics.Measure(face, lines[0]).Height
		block := len(lines)*lineHeight + (len(lines)-1)*lineSpacing
		y := (visuals.Height - block) / 2
		for _, line := range lines {
			w := graphics.Measure(face, line).Width
			graphics.DrawOutlined(img, face, graphics.Center(visuals.Width, w), y, captionStroke, line, color.White, color.Black)
			y += lineHeight + lineSpacing
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create caption: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode caption: %w", err)
	}
	return f.Close()
}
