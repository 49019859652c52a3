package textpipe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"introspect/internal/analysis"
	"introspect/internal/logging"
	"introspect/internal/services"
	"introspect/internal/services/llm"
	"introspect/internal/services/modelserve"
)

// Classifier model names served by the model server.
const (
	emotionModel    = "emotion"
	depressionModel = "depression"
)

// TextClassifier runs a named text model and returns its full label
// distribution.
type TextClassifier interface {
	ClassifyText(ctx context.Context, model, text string) (map[string]float64, error)
}

// EntityTagger performs named-entity recognition.
type EntityTagger interface {
	TagEntities(ctx context.Context, text string) ([]modelserve.Entity, error)
}

// ChatCompleter issues a JSON-only chat completion.
type ChatCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// Pipeline runs the local text classifiers and, when the privacy mode
// permits, the anonymization and LLM analysis passes.
type Pipeline struct {
	classifier  TextClassifier
	tagger      EntityTagger
	completer   ChatCompleter
	counter     TokenCounter
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// PipelineConfig bundles the pipeline's collaborators and tuning knobs.
type PipelineConfig struct {
	Classifier TextClassifier
	Tagger     EntityTagger
	Completer  ChatCompleter
	// Counter defaults to the heuristic estimator when nil.
	Counter TokenCounter
	// MaxChunkTokens bounds each classifier call; defaults to 480.
	MaxChunkTokens int
	// Temperature is passed through to LLM completions.
	Temperature float64
	Logger      *slog.Logger
}

// NewPipeline constructs the text pipeline. The tagger and completer are
// required even under full privacy so a mode change never needs rewiring.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Classifier == nil {
		return nil, services.Wrap(services.ErrConfiguration, "textpipe", "new_pipeline",
			"text classifier is required", nil)
	}
	if cfg.Tagger == nil {
		return nil, services.Wrap(services.ErrConfiguration, "textpipe", "new_pipeline",
			"entity tagger is required", nil)
	}
	if cfg.Completer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "textpipe", "new_pipeline",
			"chat completer is required", nil)
	}
	counter := cfg.Counter
	if counter == nil {
		counter = NewHeuristicCounter()
	}
	maxTokens := cfg.MaxChunkTokens
	if maxTokens <= 0 {
		maxTokens = 480
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		classifier:  cfg.Classifier,
		tagger:      cfg.Tagger,
		completer:   cfg.Completer,
		counter:     counter,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Analyze classifies the text locally and, in anonymized mode, additionally
// redacts it and runs the LLM analysis over the redacted copy. The second
// return value is the exact text that left the process, always empty under
// full privacy.
func (p *Pipeline) Analyze(ctx context.Context, text string, mode analysis.PrivacyMode) (analysis.TextAnalysis, string, error) {
	log := logging.WithContext(ctx, p.logger).With(logging.FieldComponent, "textpipe")

	chunks := splitChunks(text, p.maxTokens, p.counter)
	if len(chunks) == 0 {
		log.Info("empty text, skipping classification")
		return emptyTextAnalysis(), "", nil
	}

	emotion, depression, err := p.classifyChunks(ctx, chunks)
	if err != nil {
		return analysis.TextAnalysis{}, "", err
	}
	result := analysis.TextAnalysis{Emotion: emotion, Depression: depression}

	if !mode.AllowsOutboundText() {
		log.Info("full privacy mode, skipping anonymization and LLM analysis")
		return result, "", nil
	}

	entities, err := p.tagger.TagEntities(ctx, text)
	if err != nil {
		return analysis.TextAnalysis{}, "", err
	}
	redacted := Redact(text, entities)
	result.AnonymizedText = &redacted

	detailed := p.detailedAnalysis(ctx, log, redacted)
	result.LLMAnalysis = &detailed
	return result, redacted, nil
}

func emptyTextAnalysis() analysis.TextAnalysis {
	return analysis.TextAnalysis{
		Emotion: analysis.EmotionResult{
			DominantEmotion: "neutral",
			AllEmotions:     map[string]float64{},
		},
		Depression: analysis.DepressionResult{
			DepressionLevel: analysis.LevelNotDepression,
			AllScores:       map[string]float64{},
		},
	}
}

// classifyChunks runs both local models over every chunk. Emotion scores
// aggregate as the token-length weighted average; depression takes the
// worst-case chunk severity while still reporting the weighted average
// distribution.
func (p *Pipeline) classifyChunks(ctx context.Context, chunks []chunk) (analysis.EmotionResult, analysis.DepressionResult, error) {
	totalTokens := 0
	for _, c := range chunks {
		totalTokens += c.Tokens
	}

	emotionSums := map[string]float64{}
	depressionSums := map[string]float64{}
	worstSeverity := 0
	weightTotal := 0.0

	for _, c := range chunks {
		weight := float64(c.Tokens)
		if weight <= 0 {
			weight = 1
		}
		weightTotal += weight

		emotionScores, err := p.classifier.ClassifyText(ctx, emotionModel, c.Text)
		if err != nil {
			return analysis.EmotionResult{}, analysis.DepressionResult{}, err
		}
		for label, score := range emotionScores {
			emotionSums[label] += score * weight
		}

		depressionScores, err := p.classifier.ClassifyText(ctx, depressionModel, c.Text)
		if err != nil {
			return analysis.EmotionResult{}, analysis.DepressionResult{}, err
		}
		for label, score := range depressionScores {
			depressionSums[label] += score * weight
		}
		if severity := analysis.SeverityForLevel(analysis.DominantLabel(depressionScores)); severity > worstSeverity {
			worstSeverity = severity
		}
	}

	emotions := make(map[string]float64, len(emotionSums))
	for label, sum := range emotionSums {
		emotions[label] = sum / weightTotal
	}
	depressions := make(map[string]float64, len(depressionSums))
	for label, sum := range depressionSums {
		depressions[label] = sum / weightTotal
	}

	dominantEmotion := analysis.DominantLabel(emotions)
	level := analysis.LevelForSeverity(worstSeverity)

	emotion := analysis.EmotionResult{
		DominantEmotion: dominantEmotion,
		Confidence:      emotions[dominantEmotion],
		AllEmotions:     emotions,
		ChunksAnalyzed:  len(chunks),
		TotalTokens:     totalTokens,
		ChunkingApplied: len(chunks) > 1,
	}
	depression := analysis.DepressionResult{
		DepressionLevel: level,
		Confidence:      depressions[level],
		Severity:        worstSeverity,
		AllScores:       depressions,
		ChunksAnalyzed:  len(chunks),
		TotalTokens:     totalTokens,
		ChunkingApplied: len(chunks) > 1,
	}
	return emotion, depression, nil
}

const detailedSystemPrompt = "You are a mental health text analysis assistant. " +
	"Respond with a single JSON object and nothing else."

// detailedAnalysis asks the LLM for a structured read of the redacted text.
// An LLM failure degrades to a neutral record rather than failing the run;
// the local classifier results are the primary signal.
func (p *Pipeline) detailedAnalysis(ctx context.Context, log *slog.Logger, redacted string) analysis.DetailedAnalysis {
	prompt := strings.Join([]string{
		"Analyze the following journal text for emotional content.",
		"Respond with JSON using exactly these keys:",
		`{"emotions": ["list of emotions present"], "sentiment": "positive|negative|neutral|mixed", "key_phrases": ["notable phrases"], "severity": 0}`,
		"severity is an integer from 0 (no distress) to 10 (severe distress).",
		"",
		"Text:",
		redacted,
	}, "\n")

	content, err := p.completer.CompleteJSON(ctx, detailedSystemPrompt, prompt, p.temperature)
	if err != nil {
		log.Warn("LLM text analysis failed, using neutral record", "error", err)
		return neutralDetailedAnalysis()
	}
	var detailed analysis.DetailedAnalysis
	if err := llm.DecodeLLMJSON(content, &detailed); err != nil {
		log.Warn("LLM text analysis returned unparseable JSON, using neutral record",
			"error", fmt.Sprintf("%v", err))
		return neutralDetailedAnalysis()
	}
	if detailed.Severity < 0 {
		detailed.Severity = 0
	}
	if detailed.Severity > 10 {
		detailed.Severity = 10
	}
	if detailed.Sentiment == "" {
		detailed.Sentiment = "unknown"
	}
	return detailed
}

func neutralDetailedAnalysis() analysis.DetailedAnalysis {
	return analysis.DetailedAnalysis{
		Emotions:   []string{},
		Sentiment:  "unknown",
		KeyPhrases: []string{},
		Severity:   0,
	}
}
