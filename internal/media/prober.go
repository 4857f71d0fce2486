package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// FFprobeConfig holds configuration for the FFprobe prober.
type FFprobeConfig struct {
	// FFprobePath is the path to the ffprobe binary.
	// If empty, "ffprobe" is used (assumes it's in PATH).
	FFprobePath string
}

// DefaultFFprobeConfig returns an FFprobeConfig with defaults.
func DefaultFFprobeConfig() FFprobeConfig {
	return FFprobeConfig{
		FFprobePath: "ffprobe",
	}
}

// FFprobeProber implements Prober using the ffprobe CLI.
type FFprobeProber struct {
	config FFprobeConfig
}

// Compile-time verification that FFprobeProber implements Prober.
var _ Prober = (*FFprobeProber)(nil)

// NewFFprobeProber creates a new ffprobe-based prober.
func NewFFprobeProber(cfg FFprobeConfig) *FFprobeProber {
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	return &FFprobeProber{config: cfg}
}

// ffprobeOutput mirrors the subset of ffprobe's JSON output we consume.
type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
}

// Probe runs ffprobe over the file at path and parses duration and
// container facts from its JSON output.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if err := p.validateInput(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	args := p.buildArgs(path)

	cmd := exec.CommandContext(ctx, p.config.FFprobePath, args...)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("probe cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: ffprobe execution: %w", ErrProbeFailed, err)
	}

	result, err := parseProbeOutput(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	return result, nil
}

// validateInput checks if the input file exists and is readable.
func (p *FFprobeProber) validateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", path)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", path)
	}

	return nil
}

// buildArgs constructs the ffprobe command arguments.
func (p *FFprobeProber) buildArgs(path string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	}
}

// parseProbeOutput decodes ffprobe JSON output into a ProbeResult.
func parseProbeOutput(data []byte) (*ProbeResult, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	if out.Format.Duration == "" {
		return nil, fmt.Errorf("no duration in ffprobe output")
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
	}
	if duration < 0 {
		return nil, fmt.Errorf("negative duration %f", duration)
	}

	var size int64
	if out.Format.Size != "" {
		size, err = strconv.ParseInt(out.Format.Size, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse size %q: %w", out.Format.Size, err)
		}
	}

	return &ProbeResult{
		DurationSeconds: duration,
		FormatName:      out.Format.FormatName,
		SizeBytes:       size,
	}, nil
}
