package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"introspect/internal/media/ffprobe"
	"introspect/internal/services"
)

// SourceInfo describes a decodable video source.
type SourceInfo struct {
	Path            string
	Width           int
	Height          int
	FPS             float64
	TotalFrames     int
	DurationSeconds float64
}

// FrameSource yields decoded frames in presentation order. Next returns
// io.EOF after the final frame.
type FrameSource interface {
	Info() SourceInfo
	Next() (Frame, error)
	Close() error
}

// ffmpegSource streams raw RGB24 frames from an ffmpeg decode pipe.
type ffmpegSource struct {
	info   SourceInfo
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *strings.Builder
	buf    []byte
	closed bool
}

// OpenSource probes the video at path and starts an ffmpeg decode pipe over
// it. A source that cannot be probed or has no video stream is a fatal
// precondition for the whole run, not a per-frame error.
func OpenSource(ctx context.Context, ffmpegBinary, ffprobeBinary, path string) (FrameSource, error) {
	probe, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "video", "open_source",
			fmt.Sprintf("probe %s", path), err)
	}
	stream, ok := probe.VideoStream()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "video", "open_source",
			fmt.Sprintf("%s contains no video stream", path), nil)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, services.Wrap(services.ErrValidation, "video", "open_source",
			fmt.Sprintf("%s reports invalid geometry %dx%d", path, stream.Width, stream.Height), nil)
	}
	fps := stream.FrameRate()
	if fps <= 0 {
		return nil, services.Wrap(services.ErrValidation, "video", "open_source",
			fmt.Sprintf("%s reports no usable frame rate", path), nil)
	}

	info := SourceInfo{
		Path:            path,
		Width:           stream.Width,
		Height:          stream.Height,
		FPS:             fps,
		TotalFrames:     stream.FrameCount(probe.DurationSeconds()),
		DurationSeconds: probe.DurationSeconds(),
	}

	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-an", "-sn",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "video", "open_source", "attach decode pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "video", "open_source",
			fmt.Sprintf("start %s", binary), err)
	}
	return &ffmpegSource{
		info:   info,
		cmd:    cmd,
		stdout: stdout,
		stderr: &stderr,
		buf:    make([]byte, FrameSize(stream.Width, stream.Height)),
	}, nil
}

func (s *ffmpegSource) Info() SourceInfo {
	return s.info
}

// Next reads exactly one frame from the decode pipe. A clean EOF on a frame
// boundary ends the stream; a short read mid-frame means the decoder died and
// aborts the scan.
func (s *ffmpegSource) Next() (Frame, error) {
	n, err := io.ReadFull(s.stdout, s.buf)
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			if waitErr := s.wait(); waitErr != nil {
				return Frame{}, waitErr
			}
			return Frame{}, io.EOF
		}
		s.wait()
		return Frame{}, services.Wrap(services.ErrExternalTool, "video", "next_frame",
			fmt.Sprintf("decoder produced a partial frame (%d of %d bytes): %s",
				n, len(s.buf), strings.TrimSpace(s.stderr.String())), err)
	}
	frame := Frame{
		Width:  s.info.Width,
		Height: s.info.Height,
		Pix:    make([]byte, len(s.buf)),
	}
	copy(frame.Pix, s.buf)
	return frame, nil
}

func (s *ffmpegSource) wait() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.cmd.Wait(); err != nil {
		return services.Wrap(services.ErrExternalTool, "video", "next_frame",
			fmt.Sprintf("decoder exited: %s", strings.TrimSpace(s.stderr.String())), err)
	}
	return nil
}

func (s *ffmpegSource) Close() error {
	if s.closed {
		return nil
	}
	s.stdout.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.closed = true
	s.cmd.Wait()
	return nil
}
