package pipeline

import "introspect/internal/analysis"

// AudioEmotionLabels is the fixed label set of the vocal emotion classifier.
// The result distribution always carries exactly these labels.
var AudioEmotionLabels = []string{"neutral", "happy", "sad", "angry"}

// MapAudioEmotion projects raw classifier scores onto the fixed label set.
// Labels missing from the input score zero; unknown labels are dropped.
func MapAudioEmotion(scores map[string]float64) analysis.AudioEmotion {
	projected := make(map[string]float64, len(AudioEmotionLabels))
	for _, label := range AudioEmotionLabels {
		projected[label] = scores[label]
	}
	dominant := analysis.DominantLabel(projected)
	return analysis.AudioEmotion{
		Emotion:     dominant,
		Confidence:  projected[dominant],
		AllEmotions: projected,
	}
}
