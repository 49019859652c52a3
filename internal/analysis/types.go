package analysis

import "sort"

// Word is a single transcribed word with its timestamps in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the full speech-to-text result for one audio track.
// Duration equals the end timestamp of the last word, or 0 when no words were
// returned (silent audio).
type Transcript struct {
	Text       string  `json:"text"`
	Words      []Word  `json:"words"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
}

// VideoInfo describes the decoded source consumed by the video scanner.
type VideoInfo struct {
	Path            string  `json:"path"`
	FPS             float64 `json:"fps"`
	DurationSeconds float64 `json:"duration_seconds"`
	TotalFrames     int     `json:"total_frames"`
	IntervalSeconds int     `json:"interval_seconds"`
	FrameSkip       int     `json:"frame_skip"`
}

// IntervalRecord aggregates every face detection whose frame falls inside one
// fixed-length time window. Immutable once the window closes.
type IntervalRecord struct {
	IntervalNumber    int                `json:"interval_number"`
	StartTime         float64            `json:"start_time"`
	EndTime           float64            `json:"end_time"`
	FramesProcessed   int                `json:"frames_processed"`
	FramesSampled     int                `json:"frames_sampled"`
	FramesWithFace    int                `json:"frames_with_face"`
	FaceDetectionRate float64            `json:"face_detection_rate"`
	EmotionScores     map[string]float64 `json:"emotion_scores"`
	DominantEmotion   string             `json:"dominant_emotion"`
	DetectionsCount   int                `json:"detections_count"`
}

// TimelineSummary is the video-level roll-up across all intervals.
type TimelineSummary struct {
	TotalIntervals         int                `json:"total_intervals"`
	AverageEmotionScores   map[string]float64 `json:"average_emotion_scores"`
	OverallDominantEmotion string             `json:"overall_dominant_emotion"`
}

// Timeline is the ordered per-interval emotion record sequence for one video,
// plus its summary. Owned by a single analysis run.
type Timeline struct {
	VideoInfo VideoInfo        `json:"video_info"`
	Labels    []string         `json:"emotion_labels"`
	Intervals []IntervalRecord `json:"intervals"`
	Summary   TimelineSummary  `json:"summary"`
}

// AudioEmotion holds the 4-way softmax distribution produced by the audio
// emotion classifier. AllEmotions always carries exactly the labels neutral,
// happy, sad, and angry.
type AudioEmotion struct {
	Emotion     string             `json:"emotion"`
	Confidence  float64            `json:"confidence"`
	AllEmotions map[string]float64 `json:"all_emotions"`
}

// EmotionResult is the local text emotion classification, aggregated across
// chunks when the input exceeded the token budget.
type EmotionResult struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Confidence      float64            `json:"confidence"`
	AllEmotions     map[string]float64 `json:"all_emotions"`
	ChunksAnalyzed  int                `json:"chunks_analyzed"`
	TotalTokens     int                `json:"total_tokens"`
	ChunkingApplied bool               `json:"chunking_applied"`
}

// DepressionResult is the local depression classification. Severity is the
// fixed integer mapping of the dominant label; when chunking applied, the
// level/severity come from the worst-case chunk while AllScores remains the
// length-weighted average.
type DepressionResult struct {
	DepressionLevel string             `json:"depression_level"`
	Confidence      float64            `json:"confidence"`
	Severity        int                `json:"severity"`
	AllScores       map[string]float64 `json:"all_scores"`
	ChunksAnalyzed  int                `json:"chunks_analyzed"`
	TotalTokens     int                `json:"total_tokens"`
	ChunkingApplied bool               `json:"chunking_applied"`
}

// DetailedAnalysis is the secondary LLM text analysis, present only when the
// privacy mode permitted sending the anonymized transcript off-process.
type DetailedAnalysis struct {
	Emotions   []string `json:"emotions"`
	Sentiment  string   `json:"sentiment"`
	KeyPhrases []string `json:"key_phrases"`
	Severity   int      `json:"severity"`
}

// TextAnalysis bundles the local classifier outputs with the optional
// anonymized-mode fields. LLMAnalysis and AnonymizedText are both nil under
// full privacy and both set under anonymized mode; the privacy gate enforces
// this as an invariant rather than a best-effort redaction.
type TextAnalysis struct {
	Emotion        EmotionResult     `json:"emotion"`
	Depression     DepressionResult  `json:"depression"`
	LLMAnalysis    *DetailedAnalysis `json:"llm_analysis"`
	AnonymizedText *string           `json:"anonymized_text"`
}

// Risk levels produced by the final scorer.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// FinalAssessment is the LLM-produced structured risk assessment. On LLM
// failure it is replaced wholesale by the fixed fallback record.
type FinalAssessment struct {
	OverallScore         int      `json:"overall_mental_health_score"`
	RiskLevel            string   `json:"risk_level"`
	Confidence           float64  `json:"confidence"`
	KeyIndicators        []string `json:"key_indicators"`
	Recommendations      []string `json:"recommendations"`
	AreasOfConcern       []string `json:"areas_of_concern"`
	PositiveIndicators   []string `json:"positive_indicators"`
	DistributionInsights string   `json:"distribution_insights"`
}

// Summary is the compact per-run scorecard exposed to downstream consumers.
type Summary struct {
	MentalHealthScore int     `json:"mental_health_score"`
	RiskLevel         string  `json:"risk_level"`
	Confidence        float64 `json:"confidence"`
	VideoEmotion      string  `json:"video_emotion"`
	AudioEmotion      string  `json:"audio_emotion"`
	TextEmotion       string  `json:"text_emotion"`
	DepressionLevel   string  `json:"depression_level"`
	TotalIntervals    int     `json:"total_intervals"`
}

// Result is the complete multimodal analysis output for one run.
type Result struct {
	RunID           string          `json:"run_id"`
	VideoPath       string          `json:"video_path"`
	VideoEmotion    Timeline        `json:"video_emotion"`
	Transcript      Transcript      `json:"transcript"`
	AudioEmotion    AudioEmotion    `json:"audio_emotion"`
	TextAnalysis    TextAnalysis    `json:"text_analysis"`
	PrivacyMode     PrivacyMode     `json:"privacy_mode"`
	FinalAssessment FinalAssessment `json:"llm_final_assessment"`
	Summary         Summary         `json:"summary"`
}

// Depression severity mapping shared by the text pipeline and the heuristic
// scorer.
const (
	LevelNotDepression = "not depression"
	LevelModerate      = "moderate"
	LevelSevere        = "severe"
)

// SeverityForLevel maps a depression label onto its fixed integer severity.
// Unknown labels map to 0.
func SeverityForLevel(level string) int {
	switch level {
	case LevelModerate:
		return 5
	case LevelSevere:
		return 9
	default:
		return 0
	}
}

// LevelForSeverity is the inverse of SeverityForLevel.
func LevelForSeverity(severity int) string {
	switch severity {
	case 5:
		return LevelModerate
	case 9:
		return LevelSevere
	default:
		return LevelNotDepression
	}
}

// DominantLabel returns the label with the highest score. Ties break
// alphabetically so the result is deterministic regardless of map iteration
// order; an empty distribution returns "".
func DominantLabel(scores map[string]float64) string {
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := ""
	bestScore := 0.0
	for _, label := range labels {
		if best == "" || scores[label] > bestScore {
			best = label
			bestScore = scores[label]
		}
	}
	return best
}
