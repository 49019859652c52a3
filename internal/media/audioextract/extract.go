package audioextract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"introspect/internal/services"
)

// Extractor demuxes a video's audio track into a normalized waveform file via
// ffmpeg: mono, 16kHz, 16-bit PCM, overwriting any existing output.
type Extractor struct {
	binary string
	runner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New constructs an Extractor. It verifies the ffmpeg binary exists up front:
// a missing transcoder is a fatal environment error raised before any work
// begins, never retried.
func New(binary string) (*Extractor, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "audioextract", "new", fmt.Sprintf("binary %q not found", binary), err)
	}
	return &Extractor{binary: binary}, nil
}

// WithRunner overrides command execution (for testing).
func (e *Extractor) WithRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	e.runner = runner
}

// Extract writes the video's audio to dest as mono 16kHz pcm_s16le WAV and
// returns dest. A non-zero ffmpeg exit surfaces as a fatal error carrying the
// transcoder's diagnostic output.
func (e *Extractor) Extract(ctx context.Context, videoPath, dest string) (string, error) {
	videoPath = strings.TrimSpace(videoPath)
	if videoPath == "" {
		return "", services.Wrap(services.ErrValidation, "audioextract", "extract", "source path required", nil)
	}
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return "", services.Wrap(services.ErrValidation, "audioextract", "extract", "output path required", nil)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	output, err := e.run(ctx, e.binary, args...)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		return "", services.Wrap(services.ErrExternalTool, "audioextract", "extract", detail, err)
	}
	return dest, nil
}

func (e *Extractor) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
