package video

import (
	"math"

	"introspect/internal/analysis"
)

// noFaceEmotion marks an interval in which no face was detected.
const noFaceEmotion = "none"

// intervalAccumulator collects per-frame detections for one fixed-length
// window until it is closed into an immutable IntervalRecord.
type intervalAccumulator struct {
	number          int
	startTime       float64
	endTime         float64
	framesProcessed int
	framesSampled   int
	framesWithFace  int
	detections      int
	scoreSums       map[string]float64
}

func newIntervalAccumulator(number int, intervalSeconds int) *intervalAccumulator {
	start := float64(number * intervalSeconds)
	return &intervalAccumulator{
		number:    number,
		startTime: start,
		endTime:   start + float64(intervalSeconds),
		scoreSums: make(map[string]float64),
	}
}

// addDetection folds one face classification into the window.
func (a *intervalAccumulator) addDetection(scores map[string]float64) {
	a.detections++
	for label, score := range scores {
		a.scoreSums[label] += score
	}
}

// close freezes the window. The per-label score is the mean raw probability
// across detections, attenuated by the face detection rate and scaled to
// 0..100. A window with no detections reports all-zero scores and the "none"
// dominant sentinel.
func (a *intervalAccumulator) close(labels []string) analysis.IntervalRecord {
	rate := 0.0
	sampled := a.framesSampled
	if sampled < 1 {
		sampled = 1
	}
	rate = round3(float64(a.framesWithFace) / float64(sampled))

	scores := make(map[string]float64, len(labels))
	for _, label := range labels {
		scores[label] = 0
	}
	dominant := noFaceEmotion
	if a.detections > 0 {
		for _, label := range labels {
			mean := a.scoreSums[label] / float64(a.detections)
			scores[label] = round2(mean * rate * 100)
		}
		dominant = analysis.DominantLabel(scores)
	}

	return analysis.IntervalRecord{
		IntervalNumber:    a.number,
		StartTime:         a.startTime,
		EndTime:           a.endTime,
		FramesProcessed:   a.framesProcessed,
		FramesSampled:     a.framesSampled,
		FramesWithFace:    a.framesWithFace,
		FaceDetectionRate: rate,
		EmotionScores:     scores,
		DominantEmotion:   dominant,
		DetectionsCount:   a.detections,
	}
}

// summarize rolls the closed intervals up into the video-level summary:
// per-label averages of the interval scores and the dominant label of those
// averages.
func summarize(intervals []analysis.IntervalRecord, labels []string) analysis.TimelineSummary {
	averages := make(map[string]float64, len(labels))
	for _, label := range labels {
		averages[label] = 0
	}
	if len(intervals) == 0 {
		return analysis.TimelineSummary{
			TotalIntervals:         0,
			AverageEmotionScores:   averages,
			OverallDominantEmotion: noFaceEmotion,
		}
	}

	for _, interval := range intervals {
		for _, label := range labels {
			averages[label] += interval.EmotionScores[label]
		}
	}
	overall := noFaceEmotion
	anyNonZero := false
	for _, label := range labels {
		averages[label] = round2(averages[label] / float64(len(intervals)))
		if averages[label] > 0 {
			anyNonZero = true
		}
	}
	if anyNonZero {
		overall = analysis.DominantLabel(averages)
	}
	return analysis.TimelineSummary{
		TotalIntervals:         len(intervals),
		AverageEmotionScores:   averages,
		OverallDominantEmotion: overall,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
