package video

import (
	"testing"

	"introspect/internal/analysis"
)

var testLabels = []string{"angry", "happy", "neutral", "sad"}

func TestIntervalCloseNoDetections(t *testing.T) {
	acc := newIntervalAccumulator(0, 5)
	acc.framesProcessed = 150
	acc.framesSampled = 75

	record := acc.close(testLabels)
	if record.DominantEmotion != "none" {
		t.Fatalf("dominant = %q, want none", record.DominantEmotion)
	}
	for label, score := range record.EmotionScores {
		if score != 0 {
			t.Fatalf("score[%s] = %v, want 0", label, score)
		}
	}
	if record.FaceDetectionRate != 0 {
		t.Fatalf("rate = %v, want 0", record.FaceDetectionRate)
	}
	if record.StartTime != 0 || record.EndTime != 5 {
		t.Fatalf("window [%v, %v], want [0, 5]", record.StartTime, record.EndTime)
	}
}

func TestIntervalCloseZeroSampledDoesNotDivideByZero(t *testing.T) {
	acc := newIntervalAccumulator(2, 5)
	record := acc.close(testLabels)
	if record.FaceDetectionRate != 0 {
		t.Fatalf("rate = %v, want 0", record.FaceDetectionRate)
	}
	if record.StartTime != 10 || record.EndTime != 15 {
		t.Fatalf("window [%v, %v], want [10, 15]", record.StartTime, record.EndTime)
	}
}

func TestIntervalCloseScoresScaledByDetectionRate(t *testing.T) {
	acc := newIntervalAccumulator(0, 5)
	acc.framesProcessed = 20
	acc.framesSampled = 10
	acc.framesWithFace = 10
	for i := 0; i < 10; i++ {
		acc.addDetection(map[string]float64{"happy": 0.9, "neutral": 0.1})
	}

	record := acc.close(testLabels)
	if record.FaceDetectionRate != 1.0 {
		t.Fatalf("rate = %v, want 1.0", record.FaceDetectionRate)
	}
	if record.EmotionScores["happy"] != 90.0 {
		t.Fatalf("happy = %v, want 90.0", record.EmotionScores["happy"])
	}
	if record.EmotionScores["neutral"] != 10.0 {
		t.Fatalf("neutral = %v, want 10.0", record.EmotionScores["neutral"])
	}
	if record.DominantEmotion != "happy" {
		t.Fatalf("dominant = %q, want happy", record.DominantEmotion)
	}
	if record.DetectionsCount != 10 {
		t.Fatalf("detections = %d, want 10", record.DetectionsCount)
	}
}

func TestIntervalClosePartialDetectionRate(t *testing.T) {
	// 3 of 9 sampled frames carried a face: rate 0.333, scores attenuated.
	acc := newIntervalAccumulator(0, 5)
	acc.framesProcessed = 9
	acc.framesSampled = 9
	acc.framesWithFace = 3
	for i := 0; i < 3; i++ {
		acc.addDetection(map[string]float64{"sad": 0.6, "neutral": 0.4})
	}

	record := acc.close(testLabels)
	if record.FaceDetectionRate != 0.333 {
		t.Fatalf("rate = %v, want 0.333", record.FaceDetectionRate)
	}
	if record.EmotionScores["sad"] != 19.98 {
		t.Fatalf("sad = %v, want 19.98", record.EmotionScores["sad"])
	}
	if record.DominantEmotion != "sad" {
		t.Fatalf("dominant = %q, want sad", record.DominantEmotion)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := summarize(nil, testLabels)
	if summary.TotalIntervals != 0 {
		t.Fatalf("total = %d, want 0", summary.TotalIntervals)
	}
	if summary.OverallDominantEmotion != "none" {
		t.Fatalf("dominant = %q, want none", summary.OverallDominantEmotion)
	}
	for label, score := range summary.AverageEmotionScores {
		if score != 0 {
			t.Fatalf("average[%s] = %v, want 0", label, score)
		}
	}
}

func TestSummarizeAverages(t *testing.T) {
	intervals := []analysis.IntervalRecord{
		{EmotionScores: map[string]float64{"angry": 0, "happy": 80, "neutral": 20, "sad": 0}, DominantEmotion: "happy"},
		{EmotionScores: map[string]float64{"angry": 0, "happy": 40, "neutral": 60, "sad": 0}, DominantEmotion: "neutral"},
	}
	summary := summarize(intervals, testLabels)
	if summary.TotalIntervals != 2 {
		t.Fatalf("total = %d, want 2", summary.TotalIntervals)
	}
	if summary.AverageEmotionScores["happy"] != 60 {
		t.Fatalf("avg happy = %v, want 60", summary.AverageEmotionScores["happy"])
	}
	if summary.AverageEmotionScores["neutral"] != 40 {
		t.Fatalf("avg neutral = %v, want 40", summary.AverageEmotionScores["neutral"])
	}
	if summary.OverallDominantEmotion != "happy" {
		t.Fatalf("dominant = %q, want happy", summary.OverallDominantEmotion)
	}
}
