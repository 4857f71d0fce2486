package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// FFmpegThumbnailerConfig holds configuration for the FFmpeg thumbnailer.
type FFmpegThumbnailerConfig struct {
	// FFmpegPath is the path to the ffmpeg binary.
	// If empty, "ffmpeg" is used (assumes it's in PATH).
	FFmpegPath string

	// Count is the number of frames to extract. This is configuration, not
	// derived from duration; very short videos may fail to yield all frames.
	// Default: 10
	Count int

	// Width and Height are the output frame dimensions in pixels.
	// Default: 320x180
	Width  int
	Height int
}

// DefaultFFmpegThumbnailerConfig returns a config with production defaults.
func DefaultFFmpegThumbnailerConfig() FFmpegThumbnailerConfig {
	return FFmpegThumbnailerConfig{
		FFmpegPath: "ffmpeg",
		Count:      10,
		Width:      320,
		Height:     180,
	}
}

// FFmpegThumbnailer implements Thumbnailer using the ffmpeg CLI.
// Frames are extracted one invocation per timestamp; seeking with -ss before
// the input keeps each extraction cheap even on long videos.
type FFmpegThumbnailer struct {
	config FFmpegThumbnailerConfig
}

// Compile-time verification that FFmpegThumbnailer implements Thumbnailer.
var _ Thumbnailer = (*FFmpegThumbnailer)(nil)

// NewFFmpegThumbnailer creates a new ffmpeg-based thumbnailer.
func NewFFmpegThumbnailer(cfg FFmpegThumbnailerConfig) *FFmpegThumbnailer {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.Count <= 0 {
		cfg.Count = 10
	}
	if cfg.Width <= 0 {
		cfg.Width = 320
	}
	if cfg.Height <= 0 {
		cfg.Height = 180
	}
	return &FFmpegThumbnailer{config: cfg}
}

// Generate extracts config.Count frames evenly spaced across the timeline
// into outputDir, named thumb_1.jpg .. thumb_N.jpg. outputDir is created if
// absent. On failure the directory may be partially populated; removal is
// the caller's responsibility.
func (t *FFmpegThumbnailer) Generate(ctx context.Context, inputPath, outputDir string, durationSeconds float64) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %w", ErrThumbnailFailed, err)
	}

	paths := make([]string, 0, t.config.Count)
	for n := 1; n <= t.config.Count; n++ {
		outPath := filepath.Join(outputDir, fmt.Sprintf("thumb_%d.jpg", n))
		ts := frameTimestamp(durationSeconds, n, t.config.Count)

		args := t.buildArgs(inputPath, outPath, ts)

		cmd := exec.CommandContext(ctx, t.config.FFmpegPath, args...)
		cmd.Stdout = nil
		cmd.Stderr = nil // FFmpeg writes progress to stderr

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("thumbnail generation cancelled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("%w: frame %d at %.3fs: %w", ErrThumbnailFailed, n, ts, err)
		}

		if _, err := os.Stat(outPath); err != nil {
			return nil, fmt.Errorf("%w: frame %d not written", ErrThumbnailFailed, n)
		}

		paths = append(paths, outPath)
	}

	return paths, nil
}

// frameTimestamp returns the seek position for the nth of count frames.
// Frames are spaced at duration*n/(count+1) so none lands on the very first
// or very last instant of the video.
func frameTimestamp(durationSeconds float64, n, count int) float64 {
	return durationSeconds * float64(n) / float64(count+1)
}

// buildArgs constructs the ffmpeg arguments for a single frame extraction.
func (t *FFmpegThumbnailer) buildArgs(inputPath, outPath string, timestamp float64) []string {
	scaleFilter := fmt.Sprintf("scale=%d:%d", t.config.Width, t.config.Height)

	return []string{
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", inputPath,
		"-frames:v", "1",
		"-vf", scaleFilter,
		"-q:v", "4",
		"-y", // Overwrite output files without asking
		outPath,
	}
}
