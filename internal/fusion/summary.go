package fusion

import (
	"sort"

	"introspect/internal/analysis"
)

// BuildSummary assembles the compact per-run scorecard. The video emotion is
// the most frequent interval dominant, falling back to "neutral" when the
// timeline holds no intervals.
func BuildSummary(timeline analysis.Timeline, audio analysis.AudioEmotion,
	text analysis.TextAnalysis, assessment analysis.FinalAssessment) analysis.Summary {
	return analysis.Summary{
		MentalHealthScore: assessment.OverallScore,
		RiskLevel:         assessment.RiskLevel,
		Confidence:        assessment.Confidence,
		VideoEmotion:      dominantIntervalEmotion(timeline.Intervals),
		AudioEmotion:      audio.Emotion,
		TextEmotion:       text.Emotion.DominantEmotion,
		DepressionLevel:   text.Depression.DepressionLevel,
		TotalIntervals:    len(timeline.Intervals),
	}
}

// IntervalDominantCounts tallies how often each emotion was an interval's
// dominant label.
func IntervalDominantCounts(intervals []analysis.IntervalRecord) map[string]int {
	counts := make(map[string]int, len(intervals))
	for _, interval := range intervals {
		counts[interval.DominantEmotion]++
	}
	return counts
}

// dominantIntervalEmotion returns the mode of the per-interval dominant
// emotions. Ties break alphabetically for determinism.
func dominantIntervalEmotion(intervals []analysis.IntervalRecord) string {
	if len(intervals) == 0 {
		return "neutral"
	}
	counts := IntervalDominantCounts(intervals)
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, label := range labels[1:] {
		if counts[label] > counts[best] {
			best = label
		}
	}
	return best
}
