// Package render encodes script lines and their stills into an MP4 slideshow
// with ffmpeg.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"brand-video-backend/internal/graphics"
	"brand-video-backend/internal/models"
	"brand-video-backend/internal/storage"
)

const fadeSeconds = 0.5

var ErrNoLines = errors.New("render: no script lines")

type Options struct {
	FFmpegPath string
	FPS        int
	WorkDir    string
}

// Renderer builds one clip per script line and joins them into the final
// video, which is moved into the artifact store only once complete.
type Renderer struct {
	runner CommandRunner
	store  *storage.FileStore
	fonts  *graphics.Fonts
	opts   Options
	log    zerolog.Logger
}

func NewRenderer(runner CommandRunner, store *storage.FileStore, fonts *graphics.Fonts, opts Options, log zerolog.Logger) *Renderer {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FPS <= 0 {
		opts.FPS = 24
	}
	return &Renderer{
		runner: runner,
		store:  store,
		fonts:  fonts,
		opts:   opts,
		log:    log.With().Str("component", "render").Logger(),
	}
}

// ArtifactKey is the store key of a job's finished video.
func ArtifactKey(jobID string) string {
	return jobID + ".mp4"
}

// Render encodes the video for jobID and returns its path in the store.
// Nothing is left in the store on error.
func (r *Renderer) Render(ctx context.Context, jobID string, brand models.BrandRequest, lines []models.ScriptLine, assets []models.VisualAsset) (string, error) {
	if len(lines) == 0 {
		return "", ErrNoLines
	}
	if len(assets) != len(lines) {
		return "", fmt.Errorf("render: %d stills for %d lines", len(assets), len(lines))
	}

	dir, err := filepath.Abs(filepath.Join(r.opts.WorkDir, jobID))
	if err != nil {
		return "", fmt.Errorf("failed to resolve work directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}

	var intermediates []string
	defer func() {
		for _, p := range intermediates {
			os.Remove(p)
		}
	}()

	duration := brand.Duration
	if duration <= 0 {
		duration = models.DefaultDuration
	}
	slice := float64(duration) / float64(len(lines))

	slices := make([]string, 0, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		caption := filepath.Join(dir, fmt.Sprintf("caption_%03d.png", i))
		intermediates = append(intermediates, caption)
		if err := r.writeCaption(caption, string(line)); err != nil {
			return "", err
		}

		out := filepath.Join(dir, fmt.Sprintf("slice_%03d.mp4", i))
		intermediates = append(intermediates, out)
		if err := r.runner.Run(ctx, r.opts.FFmpegPath, r.sliceArgs(assets[i].Path, caption, slice, out)...); err != nil {
			return "", fmt.Errorf("failed to encode slice %d: %w", i, err)
		}
		slices = append(slices, out)
	}

	list := filepath.Join(dir, "concat.txt")
	intermediates = append(intermediates, list)
	if err := os.WriteFile(list, []byte(concatList(slices)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}

	partial := filepath.Join(dir, ArtifactKey(jobID)+".partial")
	intermediates = append(intermediates, partial)
	if err := r.runner.Run(ctx, r.opts.FFmpegPath, concatArgs(list, partial)...); err != nil {
		return "", fmt.Errorf("failed to concatenate slices: %w", err)
	}
	if info, err := os.Stat(partial); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("render: ffmpeg produced no output")
	}

	path, err := r.store.Import(ctx, ArtifactKey(jobID), partial)
	if err != nil {
		return "", err
	}

	r.log.Info().Str("job_id", jobID).Int("slices", len(slices)).Float64("slice_seconds", slice).Msg("Video rendered")
	return path, nil
}

// sliceArgs shows still for seconds with caption overlaid, both fading in and
// out, over a silent stereo track.
func (r *Renderer) sliceArgs(still, caption string, seconds float64, out string) []string {
	fade := min(fadeSeconds, seconds/2)
	fadeOut := seconds - fade
	length := fmt.Sprintf("%.3f", seconds)
	fps := fmt.Sprintf("%d", r.opts.FPS)

	filter := fmt.Sprintf(
		"[0:v]fade=t=in:st=0:d=%[1]g,fade=t=out:st=%[2]g:d=%[1]g[bg];"+
			"[1:v]format=rgba,fade=t=in:st=0:d=%[1]g:alpha=1,fade=t=out:st=%[2]g:d=%[1]g:alpha=1[cap];"+
			"[bg][cap]overlay=0:0,format=yuv420p[v]",
		fade, fadeOut,
	)

	return []string{
		"-y",
		"-loop", "1", "-framerate", fps, "-t", length, "-i", still,
		"-loop", "1", "-framerate", fps, "-t", length, "-i", caption,
		"-f", "lavfi", "-t", length, "-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		"-filter_complex", filter,
		"-map", "[v]", "-map", "2:a",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-r", fps,
		"-c:a", "aac",
		"-t", length,
		out,
	}
}

func concatArgs(list, out string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-c", "copy",
		"-movflags", "+faststart",
		"-f", "mp4",
		out,
	}
}

func concatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}
	return b.String()
}
