package ffprobe

import (
	"encoding/json"
	"testing"
)

func TestFrameRateParsesRational(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"", 0},
		{"30/0", 0},
		{"bogus", 0},
	}
	for _, tc := range cases {
		stream := Stream{RFrameRate: tc.raw}
		got := stream.FrameRate()
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("FrameRate(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestFrameCountFallsBackToDuration(t *testing.T) {
	stream := Stream{RFrameRate: "30/1"}
	if got := stream.FrameCount(10); got != 300 {
		t.Fatalf("expected 300 estimated frames, got %d", got)
	}

	stream.NBFrames = "299"
	if got := stream.FrameCount(10); got != 299 {
		t.Fatalf("expected reported frame count 299, got %d", got)
	}
}

func TestResultAccessors(t *testing.T) {
	payload := `{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "r_frame_rate": "30/1", "nb_frames": "300"},
			{"index": 1, "codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2}
		],
		"format": {"filename": "journal.mp4", "nb_streams": 2, "duration": "10.000000"}
	}`
	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	stream, ok := result.VideoStream()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if stream.Width != 1280 || stream.Height != 720 {
		t.Fatalf("unexpected geometry %dx%d", stream.Width, stream.Height)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 10 {
		t.Fatalf("expected duration 10, got %v", result.DurationSeconds())
	}
}
