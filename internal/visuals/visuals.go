// Package visuals renders the still image shown behind each script line.
package visuals

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"brand-video-backend/internal/graphics"
	"brand-video-backend/internal/models"
)

const (
	Width  = 1280
	Height = 720

	brandSize    = 80
	industrySize = 40
	fallbackSize = 60
)

var (
	fallbackBackground = color.RGBA{73, 109, 137, 255}
	shadowColor        = color.NRGBA{0, 0, 0, 128}
)

var palettes = map[models.Industry][]color.RGBA{
	models.IndustryTechnology: {{0, 123, 255, 255}, {40, 167, 69, 255}, {108, 117, 125, 255}},
	models.IndustryHealthcare: {{220, 53, 69, 255}, {23, 162, 184, 255}, {108, 117, 125, 255}},
	models.IndustryFinance:    {{40, 167, 69, 255}, {0, 123, 255, 255}, {108, 117, 125, 255}},
	models.IndustryRetail:     {{255, 193, 7, 255}, {220, 53, 69, 255}, {0, 123, 255, 255}},
	models.IndustryDefault:    {{73, 109, 137, 255}, {108, 117, 125, 255}, {52, 58, 64, 255}},
}

// Palette returns the background colours for industry.
func Palette(industry models.Industry) []color.RGBA {
	if p, ok := palettes[industry]; ok {
		return p
	}
	return palettes[models.IndustryDefault]
}

// Composer writes one PNG per script line into a per-job directory.
type Composer struct {
	fonts   *graphics.Fonts
	workDir string
	log     zerolog.Logger

	// encode is swapped in tests to force the fallback path.
	encode func(path string, img image.Image) error
}

func NewComposer(fonts *graphics.Fonts, workDir string, log zerolog.Logger) *Composer {
	return &Composer{
		fonts:   fonts,
		workDir: workDir,
		log:     log.With().Str("component", "visuals").Logger(),
		encode:  writePNG,
	}
}

// JobDir is where every intermediate file of a job lives.
func (c *Composer) JobDir(jobID string) string {
	return filepath.Join(c.workDir, jobID)
}

// Compose renders a still for each line. If any still fails, every line gets
// the plain fallback image instead; an error is returned only when the
// fallback cannot be written either.
func (c *Composer) Compose(ctx context.Context, jobID string, brand models.BrandRequest, lines []models.ScriptLine) ([]models.VisualAsset, error) {
	dir := c.JobDir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job directory: %w", err)
	}

	assets, err := c.composeBranded(ctx, dir, brand, len(lines))
	if err == nil {
		return assets, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		Cleanup(assets)
		return nil, ctxErr
	}

	c.log.Warn().Err(err).Str("job_id", jobID).Msg("Branded visuals failed, using fallback images")
	Cleanup(assets)

	assets, err = c.composeFallback(dir, brand, len(lines))
	if err != nil {
		Cleanup(assets)
		return nil, fmt.Errorf("failed to create fallback images: %w", err)
	}
	return assets, nil
}

func (c *Composer) composeBranded(ctx context.Context, dir string, brand models.BrandRequest, n int) ([]models.VisualAsset, error) {
	brandFace, err := c.fonts.Face(brandSize, true)
	if err != nil {
		return nil, err
	}
	defer brandFace.Close()

	industryFace, err := c.fonts.Face(industrySize, false)
	if err != nil {
		return nil, err
	}
	defer industryFace.Close()

	palette := Palette(brand.IndustryKind())
	subtitle := cases.Title(language.English).String(brand.Industry)

	assets := make([]models.VisualAsset, 0, n)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return assets, err
		}

		img := gradient(palette[i%len(palette)])

		size := graphics.Measure(brandFace, brand.BrandName)
		x := graphics.Center(Width, size.Width)
		y := (Height-size.Height)/2 - 50
		graphics.DrawShadowed(img, brandFace, x, y, 3, brand.BrandName, color.White, shadowColor)

		if subtitle != "" {
			sub := graphics.Measure(industryFace, subtitle)
			graphics.DrawShadowed(img, industryFace, graphics.Center(Width, sub.Width), y+size.Height+20, 2, subtitle, color.White, shadowColor)
		}

		asset := models.VisualAsset{Index: i, Path: stillPath(dir, i)}
		if err := c.encode(asset.Path, img); err != nil {
			return assets, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (c *Composer) composeFallback(dir string, brand models.BrandRequest, n int) ([]models.VisualAsset, error) {
	face := c.fonts.FaceOrBasic(fallbackSize, false)

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(fallbackBackground), image.Point{}, draw.Src)

	size := graphics.Measure(face, brand.BrandName)
	graphics.DrawText(img, face, graphics.Center(Width, size.Width), (Height-size.Height)/2, brand.BrandName, color.White)

	assets := make([]models.VisualAsset, 0, n)
	for i := range n {
		asset := models.VisualAsset{Index: i, Path: stillPath(dir, i)}
		if err := writePNG(asset.Path, img); err != nil {
			return assets, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// gradient fills a frame with base darkening linearly to 70% at the bottom.
func gradient(base color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	for row := range Height {
		factor := 1 - 0.3*float64(row)/Height
		c := color.RGBA{
			R: uint8(float64(base.R) * factor),
			G: uint8(float64(base.G) * factor),
			B: uint8(float64(base.B) * factor),
			A: 255,
		}
		draw.Draw(img, image.Rect(0, row, Width, row+1), image.NewUniform(c), image.Point{}, draw.Src)
	}
	return img
}

func stillPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("still_%03d.png", i))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// Cleanup removes the given stills, then their directories once empty.
// Missing files are ignored.
func Cleanup(assets []models.VisualAsset) error {
	var errs []error
	dirs := make(map[string]struct{})
	for _, a := range assets {
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
		dirs[filepath.Dir(a.Path)] = struct{}{}
	}
	for dir := range dirs {
		// fails harmlessly while other files remain
		os.Remove(dir)
	}
	return errors.Join(errs...)
}
