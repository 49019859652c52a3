package fusion

import "introspect/internal/analysis"

// negativeTextEmotions are the text emotion labels treated as risk factors.
var negativeTextEmotions = map[string]bool{
	"sadness": true,
	"fear":    true,
	"anger":   true,
}

// negativeAudioEmotions are the vocal emotion labels treated as risk factors.
var negativeAudioEmotions = map[string]bool{
	"sad":   true,
	"angry": true,
}

// HeuristicRisk computes a rule-based risk estimate without the LLM: the
// mean of three factors, the depression severity plus a 5-point factor per
// modality that scores 0 when the emotion is not negative. Pass an empty
// audioEmotion for text-only runs.
func HeuristicRisk(severity int, textEmotion, audioEmotion string) (float64, string) {
	factors := []float64{float64(severity), 0, 0}
	if negativeTextEmotions[textEmotion] {
		factors[1] = 5
	}
	if negativeAudioEmotions[audioEmotion] {
		factors[2] = 5
	}

	sum := 0.0
	for _, f := range factors {
		sum += f
	}
	score := sum / float64(len(factors))

	switch {
	case score < 3:
		return score, analysis.RiskLow
	case score < 6:
		return score, analysis.RiskModerate
	default:
		return score, analysis.RiskHigh
	}
}
