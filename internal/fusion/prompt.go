package fusion

import (
	"encoding/json"
	"fmt"
	"strings"

	"introspect/internal/analysis"
)

// assessmentSystemPrompt frames the final fusion call. The model must return
// a single JSON object matching the FinalAssessment schema.
const assessmentSystemPrompt = "You are a mental health assessment assistant. " +
	"You combine facial emotion timelines, vocal emotion, and text analysis into " +
	"a single structured assessment. Respond with a single JSON object and nothing else."

// PromptInput is everything the fusion prompt may draw on. Transcript text
// is the redacted outbound copy and must be empty under full privacy, as
// must DetailedAnalysis.
type PromptInput struct {
	VideoSummary      analysis.TimelineSummary
	IntervalCount     int
	IntervalDominants map[string]int
	AudioEmotion      analysis.AudioEmotion
	TextEmotion       analysis.EmotionResult
	Depression        analysis.DepressionResult
	DetailedAnalysis  *analysis.DetailedAnalysis
	TranscriptText    string
	PrivacyMode       analysis.PrivacyMode
}

// BuildAssessmentPrompt renders the user prompt for the final assessment.
// Score maps are embedded as indented JSON so key order, and therefore the
// prompt itself, is deterministic for identical inputs.
func BuildAssessmentPrompt(input PromptInput) string {
	var b strings.Builder

	b.WriteString("Produce a mental health assessment from the following multimodal analysis results.\n\n")

	fmt.Fprintf(&b, "FACIAL EMOTION TIMELINE (%d intervals, dominant: %s):\n",
		input.IntervalCount, input.VideoSummary.OverallDominantEmotion)
	b.WriteString(jsonBlock(input.VideoSummary.AverageEmotionScores))
	b.WriteString("\n\n")

	if len(input.IntervalDominants) > 0 {
		b.WriteString("DOMINANT EMOTION PER INTERVAL (counts):\n")
		b.WriteString(jsonBlock(input.IntervalDominants))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "VOCAL EMOTION (dominant: %s, confidence %.2f):\n",
		input.AudioEmotion.Emotion, input.AudioEmotion.Confidence)
	b.WriteString(jsonBlock(input.AudioEmotion.AllEmotions))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "TEXT EMOTION (dominant: %s):\n", input.TextEmotion.DominantEmotion)
	b.WriteString(jsonBlock(input.TextEmotion.AllEmotions))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "DEPRESSION INDICATORS (level: %s, severity %d of 10):\n",
		input.Depression.DepressionLevel, input.Depression.Severity)
	b.WriteString(jsonBlock(input.Depression.AllScores))
	b.WriteString("\n\n")

	if input.PrivacyMode.AllowsOutboundText() {
		if input.DetailedAnalysis != nil {
			b.WriteString("SECONDARY TEXT ANALYSIS:\n")
			b.WriteString(jsonBlock(input.DetailedAnalysis))
			b.WriteString("\n\n")
		}
		if strings.TrimSpace(input.TranscriptText) != "" {
			b.WriteString("ANONYMIZED TRANSCRIPT:\n")
			b.WriteString(strings.TrimSpace(input.TranscriptText))
			b.WriteString("\n\n")
		}
	}

	b.WriteString("Respond with JSON using exactly these keys:\n")
	b.WriteString(`{"overall_mental_health_score": 0, "risk_level": "low|moderate|high|critical", ` +
		`"confidence": 0.0, "key_indicators": [], "recommendations": [], "areas_of_concern": [], ` +
		`"positive_indicators": [], "distribution_insights": ""}`)
	b.WriteString("\n")
	b.WriteString("overall_mental_health_score is an integer from 0 (severe distress) to 100 (excellent). " +
		"confidence is a float from 0 to 1. distribution_insights should interpret the full " +
		"probability distributions, not only the dominant labels.")

	return b.String()
}

func jsonBlock(value any) string {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
