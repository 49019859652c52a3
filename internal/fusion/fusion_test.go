package fusion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"introspect/internal/analysis"
)

type fakeCompleter struct {
	content string
	err     error
	gotUser string
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	f.gotUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func samplePromptInput(mode analysis.PrivacyMode, transcript string) PromptInput {
	return PromptInput{
		VideoSummary: analysis.TimelineSummary{
			TotalIntervals:         4,
			AverageEmotionScores:   map[string]float64{"happy": 40, "sad": 20},
			OverallDominantEmotion: "happy",
		},
		IntervalCount:     4,
		IntervalDominants: map[string]int{"happy": 3, "sad": 1},
		AudioEmotion: analysis.AudioEmotion{
			Emotion:     "neutral",
			Confidence:  0.6,
			AllEmotions: map[string]float64{"neutral": 0.6, "happy": 0.2, "sad": 0.15, "angry": 0.05},
		},
		TextEmotion: analysis.EmotionResult{
			DominantEmotion: "joy",
			AllEmotions:     map[string]float64{"joy": 0.7, "sadness": 0.3},
		},
		Depression: analysis.DepressionResult{
			DepressionLevel: analysis.LevelNotDepression,
			AllScores:       map[string]float64{"not depression": 0.8, "moderate": 0.15, "severe": 0.05},
		},
		TranscriptText: transcript,
		PrivacyMode:    mode,
	}
}

func TestBuildAssessmentPromptIncludesTranscriptWhenAnonymized(t *testing.T) {
	input := samplePromptInput(analysis.PrivacyAnonymized, "I went to [REDACTED] today.")
	input.DetailedAnalysis = &analysis.DetailedAnalysis{
		Emotions:   []string{"contentment"},
		Sentiment:  "positive",
		KeyPhrases: []string{"went out"},
		Severity:   1,
	}
	prompt := BuildAssessmentPrompt(input)
	if !strings.Contains(prompt, "ANONYMIZED TRANSCRIPT") {
		t.Fatal("prompt missing transcript section")
	}
	if !strings.Contains(prompt, "[REDACTED]") {
		t.Fatal("prompt missing redacted transcript text")
	}
	if !strings.Contains(prompt, "SECONDARY TEXT ANALYSIS") || !strings.Contains(prompt, "contentment") {
		t.Fatal("prompt missing secondary text analysis section")
	}
}

func TestBuildAssessmentPromptIncludesIntervalDominantCounts(t *testing.T) {
	prompt := BuildAssessmentPrompt(samplePromptInput(analysis.PrivacyFull, ""))
	if !strings.Contains(prompt, "DOMINANT EMOTION PER INTERVAL") {
		t.Fatal("prompt missing interval dominant distribution")
	}
	if !strings.Contains(prompt, `"happy": 3`) {
		t.Fatal("prompt missing the happy interval count")
	}
}

func TestBuildAssessmentPromptLabelsSeverityScale(t *testing.T) {
	prompt := BuildAssessmentPrompt(samplePromptInput(analysis.PrivacyFull, ""))
	if !strings.Contains(prompt, "severity 0 of 10") {
		t.Fatal("prompt does not report severity on the 0 to 10 scale")
	}
}

func TestBuildAssessmentPromptOmitsTranscriptUnderFullPrivacy(t *testing.T) {
	input := samplePromptInput(analysis.PrivacyFull, "raw transcript that must not appear")
	input.DetailedAnalysis = &analysis.DetailedAnalysis{Sentiment: "negative"}
	prompt := BuildAssessmentPrompt(input)
	if strings.Contains(prompt, "raw transcript") {
		t.Fatal("full privacy prompt leaked transcript text")
	}
	if strings.Contains(prompt, "ANONYMIZED TRANSCRIPT") {
		t.Fatal("full privacy prompt should not carry a transcript section")
	}
	if strings.Contains(prompt, "SECONDARY TEXT ANALYSIS") {
		t.Fatal("full privacy prompt should not carry the secondary analysis")
	}
}

func TestBuildAssessmentPromptDeterministic(t *testing.T) {
	input := samplePromptInput(analysis.PrivacyAnonymized, "Stable text.")
	first := BuildAssessmentPrompt(input)
	for i := 0; i < 5; i++ {
		if got := BuildAssessmentPrompt(input); got != first {
			t.Fatal("prompt differs across builds with identical input")
		}
	}
}

func TestAssessParsesValidResponse(t *testing.T) {
	completer := &fakeCompleter{content: `{
		"overall_mental_health_score": 72,
		"risk_level": "low",
		"confidence": 0.8,
		"key_indicators": ["stable mood"],
		"recommendations": ["keep journaling"],
		"areas_of_concern": [],
		"positive_indicators": ["positive affect"],
		"distribution_insights": "distributions lean positive"
	}`}
	scorer, err := NewScorer(completer, 0.2, nil)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	got := scorer.Assess(context.Background(), samplePromptInput(analysis.PrivacyFull, ""))
	if got.OverallScore != 72 || got.RiskLevel != analysis.RiskLow {
		t.Fatalf("unexpected assessment %+v", got)
	}
	if got.AreasOfConcern == nil {
		t.Fatal("empty slices must stay non-nil")
	}
}

func TestAssessFallsBackOnTransportError(t *testing.T) {
	scorer, err := NewScorer(&fakeCompleter{err: errors.New("connection refused")}, 0.2, nil)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	got := scorer.Assess(context.Background(), samplePromptInput(analysis.PrivacyFull, ""))
	assertFallback(t, got)
}

func TestAssessFallsBackOnBadJSON(t *testing.T) {
	scorer, err := NewScorer(&fakeCompleter{content: "sorry, I cannot help with that"}, 0.2, nil)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	assertFallback(t, scorer.Assess(context.Background(), samplePromptInput(analysis.PrivacyFull, "")))
}

func TestAssessFallsBackOnInvalidRiskLevel(t *testing.T) {
	scorer, err := NewScorer(&fakeCompleter{content: `{
		"overall_mental_health_score": 50, "risk_level": "extreme", "confidence": 0.5
	}`}, 0.2, nil)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	assertFallback(t, scorer.Assess(context.Background(), samplePromptInput(analysis.PrivacyFull, "")))
}

func TestAssessFallsBackOnOutOfRangeScore(t *testing.T) {
	scorer, err := NewScorer(&fakeCompleter{content: `{
		"overall_mental_health_score": 180, "risk_level": "low", "confidence": 0.5
	}`}, 0.2, nil)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	assertFallback(t, scorer.Assess(context.Background(), samplePromptInput(analysis.PrivacyFull, "")))
}

func assertFallback(t *testing.T, got analysis.FinalAssessment) {
	t.Helper()
	if got.OverallScore != 50 {
		t.Fatalf("fallback score = %d, want 50", got.OverallScore)
	}
	if got.RiskLevel != analysis.RiskModerate {
		t.Fatalf("fallback risk = %q, want moderate", got.RiskLevel)
	}
	if got.Confidence != 0.5 {
		t.Fatalf("fallback confidence = %v, want 0.5", got.Confidence)
	}
	if len(got.KeyIndicators) != 1 || got.KeyIndicators[0] != "LLM unavailable" {
		t.Fatalf("fallback indicators = %v", got.KeyIndicators)
	}
	if got.DistributionInsights != "Full distribution analysis unavailable due to LLM error" {
		t.Fatalf("fallback insights = %q", got.DistributionInsights)
	}
}

func TestHeuristicRisk(t *testing.T) {
	cases := []struct {
		name      string
		severity  int
		text      string
		audio     string
		wantLevel string
	}{
		{name: "all clear", severity: 0, text: "joy", audio: "happy", wantLevel: analysis.RiskLow},
		{name: "moderate severity alone", severity: 5, text: "joy", audio: "neutral", wantLevel: analysis.RiskLow},
		{name: "severe severity alone", severity: 9, text: "joy", audio: "neutral", wantLevel: analysis.RiskModerate},
		{name: "severe with negative modalities", severity: 9, text: "sadness", audio: "sad", wantLevel: analysis.RiskHigh},
		{name: "negative text only", severity: 0, text: "fear", audio: "", wantLevel: analysis.RiskLow},
		{name: "severe text only", severity: 9, text: "sadness", audio: "", wantLevel: analysis.RiskModerate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, level := HeuristicRisk(tc.severity, tc.text, tc.audio)
			if level != tc.wantLevel {
				t.Fatalf("level = %q (score %v), want %q", level, score, tc.wantLevel)
			}
		})
	}
}

func TestHeuristicRiskScoreIsMeanOfThreeFactors(t *testing.T) {
	score, _ := HeuristicRisk(9, "sadness", "sad")
	want := (9.0 + 5 + 5) / 3
	if score != want {
		t.Fatalf("score = %v, want %v", score, want)
	}
	// Non-negative emotions still contribute zero-valued factors.
	score, level := HeuristicRisk(5, "joy", "neutral")
	if want := 5.0 / 3; score != want {
		t.Fatalf("score = %v, want %v", score, want)
	}
	if level != analysis.RiskLow {
		t.Fatalf("level = %q, want %q", level, analysis.RiskLow)
	}
}

func TestBuildSummaryModeOfIntervalDominants(t *testing.T) {
	timeline := analysis.Timeline{
		Intervals: []analysis.IntervalRecord{
			{DominantEmotion: "happy"},
			{DominantEmotion: "sad"},
			{DominantEmotion: "happy"},
		},
	}
	summary := BuildSummary(timeline,
		analysis.AudioEmotion{Emotion: "neutral"},
		analysis.TextAnalysis{
			Emotion:    analysis.EmotionResult{DominantEmotion: "joy"},
			Depression: analysis.DepressionResult{DepressionLevel: analysis.LevelNotDepression},
		},
		analysis.FinalAssessment{OverallScore: 70, RiskLevel: analysis.RiskLow, Confidence: 0.8},
	)
	if summary.VideoEmotion != "happy" {
		t.Fatalf("video emotion = %q, want happy", summary.VideoEmotion)
	}
	if summary.TotalIntervals != 3 {
		t.Fatalf("total intervals = %d, want 3", summary.TotalIntervals)
	}
	if summary.MentalHealthScore != 70 || summary.RiskLevel != analysis.RiskLow {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestBuildSummaryNoIntervals(t *testing.T) {
	summary := BuildSummary(analysis.Timeline{}, analysis.AudioEmotion{}, analysis.TextAnalysis{}, analysis.FinalAssessment{})
	if summary.VideoEmotion != "neutral" {
		t.Fatalf("video emotion = %q, want neutral", summary.VideoEmotion)
	}
}
