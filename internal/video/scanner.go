package video

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"introspect/internal/analysis"
	"introspect/internal/logging"
	"introspect/internal/services"
	"introspect/internal/services/modelserve"
)

// FaceBox is a detected face region in frame pixel coordinates.
type FaceBox struct {
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
}

// FaceDetector locates faces within a frame.
type FaceDetector interface {
	DetectFaces(ctx context.Context, frame Frame) ([]FaceBox, error)
}

// EmotionModel classifies the emotion distribution of a face crop.
type EmotionModel interface {
	ClassifyFace(ctx context.Context, face Frame) (map[string]float64, error)
}

// ProgressFunc is invoked after each interval closes, with the record just
// produced and the estimated total interval count for the video.
type ProgressFunc func(record analysis.IntervalRecord, total int)

// Scanner walks a video frame by frame, samples frames on the configured
// stride, and aggregates face emotion detections into fixed-length intervals.
type Scanner struct {
	detector FaceDetector
	model    EmotionModel
	labels   []string
	logger   *slog.Logger
	progress ProgressFunc
}

// ScannerOption customizes a Scanner.
type ScannerOption func(*Scanner)

// WithProgress registers a callback fired after each closed interval.
func WithProgress(fn ProgressFunc) ScannerOption {
	return func(s *Scanner) {
		s.progress = fn
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner constructs a scanner over the supplied models. The label set
// fixes the key space of every emitted score map.
func NewScanner(detector FaceDetector, model EmotionModel, labels []string, opts ...ScannerOption) (*Scanner, error) {
	if detector == nil || model == nil {
		return nil, services.Wrap(services.ErrConfiguration, "video", "new_scanner",
			"face detector and emotion model are both required", nil)
	}
	if len(labels) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "video", "new_scanner",
			"at least one emotion label is required", nil)
	}
	scanner := &Scanner{
		detector: detector,
		model:    model,
		labels:   append([]string(nil), labels...),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(scanner)
	}
	return scanner, nil
}

// Scan consumes the source to exhaustion. Every decoded frame counts toward
// frames_processed; only every frameSkip-th frame is sampled for detection.
// Interval boundaries are frame-count based: int(fps * intervalSeconds)
// frames per window, with a trailing partial window closed at end of stream.
func (s *Scanner) Scan(ctx context.Context, source FrameSource, intervalSeconds, frameSkip int) (analysis.Timeline, error) {
	if intervalSeconds <= 0 {
		return analysis.Timeline{}, services.Wrap(services.ErrValidation, "video", "scan",
			"interval seconds must be positive", nil)
	}
	if frameSkip < 1 {
		frameSkip = 1
	}

	info := source.Info()
	framesPerInterval := int(info.FPS * float64(intervalSeconds))
	if framesPerInterval < 1 {
		framesPerInterval = 1
	}

	log := logging.WithContext(ctx, s.logger).With(logging.FieldComponent, "video")
	log.Info("video scan started",
		"path", info.Path,
		"fps", info.FPS,
		"total_frames", info.TotalFrames,
		"frames_per_interval", framesPerInterval,
		"frame_skip", frameSkip,
	)

	totalIntervals := estimateTotalIntervals(info, framesPerInterval, intervalSeconds)

	var intervals []analysis.IntervalRecord
	current := newIntervalAccumulator(0, intervalSeconds)
	frameIndex := 0

	closeCurrent := func() {
		record := current.close(s.labels)
		intervals = append(intervals, record)
		if s.progress != nil {
			total := totalIntervals
			if len(intervals) > total {
				total = len(intervals)
			}
			s.progress(record, total)
		}
		current = newIntervalAccumulator(len(intervals), intervalSeconds)
	}

	for {
		if err := ctx.Err(); err != nil {
			return analysis.Timeline{}, services.Wrap(services.ErrTimeout, "video", "scan", "scan cancelled", err)
		}
		frame, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return analysis.Timeline{}, err
		}

		if current.framesProcessed == framesPerInterval {
			closeCurrent()
		}
		current.framesProcessed++

		sampled := frameIndex%frameSkip == 0
		frameIndex++
		if !sampled {
			continue
		}
		current.framesSampled++

		faces, err := s.detector.DetectFaces(ctx, frame)
		if err != nil {
			return analysis.Timeline{}, err
		}
		if len(faces) == 0 {
			continue
		}
		current.framesWithFace++
		face := largestFace(faces)
		crop := frame.Crop(face.X, face.Y, face.Width, face.Height)
		if !crop.Valid() {
			continue
		}
		scores, err := s.model.ClassifyFace(ctx, crop)
		if err != nil {
			return analysis.Timeline{}, err
		}
		current.addDetection(scores)
	}

	// Trailing partial window.
	if current.framesProcessed > 0 {
		closeCurrent()
	}

	timeline := analysis.Timeline{
		VideoInfo: analysis.VideoInfo{
			Path:            info.Path,
			FPS:             info.FPS,
			DurationSeconds: info.DurationSeconds,
			TotalFrames:     frameIndex,
			IntervalSeconds: intervalSeconds,
			FrameSkip:       frameSkip,
		},
		Labels:    append([]string(nil), s.labels...),
		Intervals: intervals,
		Summary:   summarize(intervals, s.labels),
	}
	log.Info("video scan finished",
		"frames", frameIndex,
		"intervals", len(intervals),
		"dominant", timeline.Summary.OverallDominantEmotion,
	)
	return timeline, nil
}

// largestFace returns the face with the largest pixel area, first wins on
// ties. Crowded frames track only the primary subject.
func largestFace(faces []FaceBox) FaceBox {
	best := faces[0]
	bestArea := best.Width * best.Height
	for _, face := range faces[1:] {
		if area := face.Width * face.Height; area > bestArea {
			best = face
			bestArea = area
		}
	}
	return best
}

// estimateTotalIntervals predicts the interval count before decoding, from
// the frame count when known and the container duration otherwise.
func estimateTotalIntervals(info SourceInfo, framesPerInterval, intervalSeconds int) int {
	if info.TotalFrames > 0 {
		return (info.TotalFrames + framesPerInterval - 1) / framesPerInterval
	}
	if info.DurationSeconds > 0 {
		total := int(info.DurationSeconds) / intervalSeconds
		if float64(total*intervalSeconds) < info.DurationSeconds {
			total++
		}
		return total
	}
	return 0
}

// modelServeDetector adapts the model server face endpoint to FaceDetector,
// keeping only detections strictly above the confidence floor.
type modelServeDetector struct {
	client        *modelserve.Client
	minConfidence float64
}

// NewModelServeDetector wraps the model server face endpoint.
func NewModelServeDetector(client *modelserve.Client, minConfidence float64) FaceDetector {
	return &modelServeDetector{client: client, minConfidence: minConfidence}
}

func (d *modelServeDetector) DetectFaces(ctx context.Context, frame Frame) ([]FaceBox, error) {
	encoded, err := frame.EncodeJPEG()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "video", "detect_faces", "encode frame", err)
	}
	boxes, err := d.client.DetectFaces(ctx, encoded)
	if err != nil {
		return nil, err
	}
	faces := make([]FaceBox, 0, len(boxes))
	for _, box := range boxes {
		if box.Confidence <= d.minConfidence {
			continue
		}
		faces = append(faces, FaceBox{
			X:          box.X,
			Y:          box.Y,
			Width:      box.Width,
			Height:     box.Height,
			Confidence: box.Confidence,
		})
	}
	return faces, nil
}

// modelServeEmotion adapts the model server facial emotion endpoint.
type modelServeEmotion struct {
	client *modelserve.Client
}

// NewModelServeEmotion wraps the model server facial emotion endpoint.
func NewModelServeEmotion(client *modelserve.Client) EmotionModel {
	return &modelServeEmotion{client: client}
}

func (m *modelServeEmotion) ClassifyFace(ctx context.Context, face Frame) (map[string]float64, error) {
	encoded, err := face.EncodeJPEG()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "video", "classify_face", "encode crop", err)
	}
	return m.client.ClassifyFaceEmotion(ctx, encoded)
}
