package pipeline

import (
	"context"

	"introspect/internal/analysis"
	"introspect/internal/video"
)

// ScanVideoAnalyzer adapts the frame scanner to the orchestrator: it opens a
// decode pipe over the file, scans it to exhaustion, and closes the pipe.
type ScanVideoAnalyzer struct {
	Scanner         *video.Scanner
	FFmpegBinary    string
	FFprobeBinary   string
	IntervalSeconds int
	FrameSkip       int
}

// AnalyzeVideo implements VideoAnalyzer.
func (a *ScanVideoAnalyzer) AnalyzeVideo(ctx context.Context, path string) (analysis.Timeline, error) {
	source, err := video.OpenSource(ctx, a.FFmpegBinary, a.FFprobeBinary, path)
	if err != nil {
		return analysis.Timeline{}, err
	}
	defer source.Close()
	return a.Scanner.Scan(ctx, source, a.IntervalSeconds, a.FrameSkip)
}
