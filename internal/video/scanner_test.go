package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"introspect/internal/analysis"
	"introspect/internal/services/modelserve"
)

type fakeSource struct {
	info   SourceInfo
	frames int
	served int
	closed bool
}

func (s *fakeSource) Info() SourceInfo { return s.info }

func (s *fakeSource) Next() (Frame, error) {
	if s.served >= s.frames {
		return Frame{}, io.EOF
	}
	s.served++
	return solidFrame(4, 4, 128, 128, 128), nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeDetector struct {
	calls int
	// faceEvery returns one face on every call when 1, every other call
	// when 2, and so on. 0 means never.
	faceEvery int
	err       error
}

func (d *fakeDetector) DetectFaces(ctx context.Context, frame Frame) ([]FaceBox, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if d.faceEvery <= 0 || (d.calls-1)%d.faceEvery != 0 {
		return nil, nil
	}
	return []FaceBox{{X: 0, Y: 0, Width: 4, Height: 4, Confidence: 0.99}}, nil
}

type fakeModel struct {
	calls  int
	scores map[string]float64
}

func (m *fakeModel) ClassifyFace(ctx context.Context, face Frame) (map[string]float64, error) {
	m.calls++
	return m.scores, nil
}

func newTestScanner(t *testing.T, detector FaceDetector, model EmotionModel, opts ...ScannerOption) *Scanner {
	t.Helper()
	scanner, err := NewScanner(detector, model, testLabels, opts...)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	return scanner
}

func TestScanFrameSkipCounting(t *testing.T) {
	// 10 fps, 5 second intervals: 50 frames per window. 120 frames total
	// gives two full windows plus a 20-frame partial.
	source := &fakeSource{
		info:   SourceInfo{Path: "clip.mp4", Width: 4, Height: 4, FPS: 10, TotalFrames: 120},
		frames: 120,
	}
	detector := &fakeDetector{faceEvery: 1}
	model := &fakeModel{scores: map[string]float64{"happy": 1.0}}
	scanner := newTestScanner(t, detector, model)

	timeline, err := scanner.Scan(context.Background(), source, 5, 2)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(timeline.Intervals) != 3 {
		t.Fatalf("intervals = %d, want 3", len(timeline.Intervals))
	}
	first := timeline.Intervals[0]
	if first.FramesProcessed != 50 {
		t.Fatalf("frames_processed = %d, want 50 (skipped frames still count)", first.FramesProcessed)
	}
	if first.FramesSampled != 25 {
		t.Fatalf("frames_sampled = %d, want 25", first.FramesSampled)
	}
	last := timeline.Intervals[2]
	if last.FramesProcessed != 20 {
		t.Fatalf("partial window frames_processed = %d, want 20", last.FramesProcessed)
	}
	if detector.calls != 60 {
		t.Fatalf("detector calls = %d, want 60 (every second frame)", detector.calls)
	}
	if timeline.VideoInfo.TotalFrames != 120 {
		t.Fatalf("total frames = %d, want 120", timeline.VideoInfo.TotalFrames)
	}
}

func TestScanIntervalWindows(t *testing.T) {
	source := &fakeSource{
		info:   SourceInfo{Path: "clip.mp4", Width: 4, Height: 4, FPS: 2},
		frames: 25,
	}
	scanner := newTestScanner(t, &fakeDetector{}, &fakeModel{scores: map[string]float64{}})

	timeline, err := scanner.Scan(context.Background(), source, 5, 1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// 2 fps * 5s = 10 frames per window; 25 frames = 2 full + 1 partial.
	if len(timeline.Intervals) != 3 {
		t.Fatalf("intervals = %d, want 3", len(timeline.Intervals))
	}
	second := timeline.Intervals[1]
	if second.StartTime != 5 || second.EndTime != 10 {
		t.Fatalf("second window [%v, %v], want [5, 10]", second.StartTime, second.EndTime)
	}
	// No faces anywhere: every window reports the no-face sentinel.
	for _, interval := range timeline.Intervals {
		if interval.DominantEmotion != "none" {
			t.Fatalf("dominant = %q, want none", interval.DominantEmotion)
		}
	}
	if timeline.Summary.OverallDominantEmotion != "none" {
		t.Fatalf("overall dominant = %q, want none", timeline.Summary.OverallDominantEmotion)
	}
}

func TestScanProgressCallback(t *testing.T) {
	// 12 frames at 1 fps with 5s intervals: 3 windows, known up front.
	source := &fakeSource{
		info:   SourceInfo{Path: "clip.mp4", Width: 4, Height: 4, FPS: 1, TotalFrames: 12},
		frames: 12,
	}
	var seen []analysis.IntervalRecord
	scanner := newTestScanner(t, &fakeDetector{}, &fakeModel{scores: map[string]float64{}},
		WithProgress(func(record analysis.IntervalRecord, total int) {
			seen = append(seen, record)
			if total != 3 {
				t.Errorf("total = %d, want 3 on every callback", total)
			}
		}))

	timeline, err := scanner.Scan(context.Background(), source, 5, 1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(seen) != len(timeline.Intervals) {
		t.Fatalf("progress calls = %d, intervals = %d", len(seen), len(timeline.Intervals))
	}
	for i, record := range seen {
		if record.IntervalNumber != i {
			t.Fatalf("progress record %d has interval number %d", i, record.IntervalNumber)
		}
	}
}

// multiFaceDetector reports a small background face alongside the subject.
type multiFaceDetector struct{}

func (d *multiFaceDetector) DetectFaces(ctx context.Context, frame Frame) ([]FaceBox, error) {
	return []FaceBox{
		{X: 0, Y: 0, Width: 1, Height: 1, Confidence: 0.99},
		{X: 0, Y: 0, Width: 4, Height: 4, Confidence: 0.95},
	}, nil
}

type cropSizeModel struct {
	calls int
	crops []int
}

func (m *cropSizeModel) ClassifyFace(ctx context.Context, face Frame) (map[string]float64, error) {
	m.calls++
	m.crops = append(m.crops, face.Width)
	return map[string]float64{"happy": 1.0}, nil
}

func TestScanClassifiesOnlyLargestFace(t *testing.T) {
	source := &fakeSource{
		info:   SourceInfo{Path: "clip.mp4", Width: 4, Height: 4, FPS: 1},
		frames: 5,
	}
	model := &cropSizeModel{}
	scanner := newTestScanner(t, &multiFaceDetector{}, model)

	timeline, err := scanner.Scan(context.Background(), source, 5, 1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if model.calls != 5 {
		t.Fatalf("classifier calls = %d, want 5 (one per frame)", model.calls)
	}
	for i, width := range model.crops {
		if width != 4 {
			t.Fatalf("crop %d width = %d, want 4 (largest face)", i, width)
		}
	}
	if got := timeline.Intervals[0].DetectionsCount; got != 5 {
		t.Fatalf("detections = %d, want 5", got)
	}
}

func TestEstimateTotalIntervalsFromDuration(t *testing.T) {
	info := SourceInfo{DurationSeconds: 23}
	if got := estimateTotalIntervals(info, 50, 5); got != 5 {
		t.Fatalf("estimate = %d, want 5", got)
	}
	info = SourceInfo{TotalFrames: 120}
	if got := estimateTotalIntervals(info, 50, 5); got != 3 {
		t.Fatalf("estimate = %d, want 3", got)
	}
	if got := estimateTotalIntervals(SourceInfo{}, 50, 5); got != 0 {
		t.Fatalf("estimate = %d, want 0 when nothing is known", got)
	}
}

func TestScanDetectorErrorAborts(t *testing.T) {
	source := &fakeSource{
		info:   SourceInfo{Path: "clip.mp4", Width: 4, Height: 4, FPS: 1},
		frames: 10,
	}
	wantErr := errors.New("detector offline")
	scanner := newTestScanner(t, &fakeDetector{err: wantErr}, &fakeModel{})

	_, err := scanner.Scan(context.Background(), source, 5, 1)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected detector error, got %v", err)
	}
}

func TestScanEmotionAggregation(t *testing.T) {
	// One 5s window at 1 fps with a face on every sampled frame scoring
	// happy 0.9: detection rate 1.0, happy score 90.
	source := &fakeSource{
		info:   SourceInfo{Path: "clip.mp4", Width: 4, Height: 4, FPS: 1},
		frames: 5,
	}
	scanner := newTestScanner(t, &fakeDetector{faceEvery: 1},
		&fakeModel{scores: map[string]float64{"happy": 0.9, "neutral": 0.1}})

	timeline, err := scanner.Scan(context.Background(), source, 5, 1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(timeline.Intervals) != 1 {
		t.Fatalf("intervals = %d, want 1", len(timeline.Intervals))
	}
	record := timeline.Intervals[0]
	if record.EmotionScores["happy"] != 90.0 {
		t.Fatalf("happy = %v, want 90.0", record.EmotionScores["happy"])
	}
	if record.DominantEmotion != "happy" {
		t.Fatalf("dominant = %q, want happy", record.DominantEmotion)
	}
	if timeline.Summary.OverallDominantEmotion != "happy" {
		t.Fatalf("overall dominant = %q, want happy", timeline.Summary.OverallDominantEmotion)
	}
}

func TestModelServeDetectorConfidenceThreshold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"faces":[
			{"x":0,"y":0,"width":4,"height":4,"confidence":0.95},
			{"x":1,"y":1,"width":2,"height":2,"confidence":0.9},
			{"x":2,"y":2,"width":1,"height":1,"confidence":0.89}
		]}`)
	}))
	defer server.Close()

	client, err := modelserve.NewClient(modelserve.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	detector := NewModelServeDetector(client, 0.9)

	faces, err := detector.DetectFaces(context.Background(), solidFrame(4, 4, 128, 128, 128))
	if err != nil {
		t.Fatalf("DetectFaces: %v", err)
	}
	// Exactly 0.9 sits on the floor and is rejected.
	if len(faces) != 1 {
		t.Fatalf("faces = %d, want 1", len(faces))
	}
	if faces[0].Confidence != 0.95 {
		t.Fatalf("kept confidence %v, want 0.95", faces[0].Confidence)
	}
}

func TestScanCancelledContext(t *testing.T) {
	source := &fakeSource{
		info:   SourceInfo{Path: "clip.mp4", Width: 4, Height: 4, FPS: 1},
		frames: 10,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scanner := newTestScanner(t, &fakeDetector{}, &fakeModel{})
	if _, err := scanner.Scan(ctx, source, 5, 1); err == nil {
		t.Fatal("expected cancellation error")
	}
}
