package media

import (
	"context"
	"errors"
)

var (
	// ErrProbeFailed indicates the probe step could not read the container
	// (unreadable, corrupt, or unsupported input).
	ErrProbeFailed = errors.New("media probe failed")

	// ErrThumbnailFailed indicates frame extraction failed. The output
	// directory may be left partially populated; callers own its removal.
	ErrThumbnailFailed = errors.New("thumbnail generation failed")
)

// ProbeResult contains container-level facts reported by the probe step.
type ProbeResult struct {
	// DurationSeconds is the container duration in seconds.
	DurationSeconds float64
	// FormatName is the container format as reported by the probe tool.
	FormatName string
	// SizeBytes is the file size as reported by the probe tool.
	SizeBytes int64
}

// Prober inspects a media file and reports stream-level facts without
// decoding the full content.
type Prober interface {
	// Probe inspects the file at path. It has no side effects beyond
	// reading the file. Failures wrap ErrProbeFailed.
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

// Thumbnailer extracts preview frames from a video file.
type Thumbnailer interface {
	// Generate writes count JPEG frames, evenly spaced across duration,
	// into outputDir as thumb_1.jpg .. thumb_{count}.jpg. The directory is
	// created if absent. On failure the directory may hold a partial set;
	// the caller is responsible for removing it.
	Generate(ctx context.Context, inputPath, outputDir string, durationSeconds float64) ([]string, error)
}
