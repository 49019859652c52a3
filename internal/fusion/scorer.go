package fusion

import (
	"context"
	"log/slog"

	"introspect/internal/analysis"
	"introspect/internal/logging"
	"introspect/internal/services"
	"introspect/internal/services/llm"
)

// ChatCompleter issues a JSON-only chat completion.
type ChatCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// Scorer produces the final structured assessment from the fused modality
// results.
type Scorer struct {
	completer   ChatCompleter
	temperature float64
	logger      *slog.Logger
}

// NewScorer constructs a Scorer around the supplied completer.
func NewScorer(completer ChatCompleter, temperature float64, logger *slog.Logger) (*Scorer, error) {
	if completer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "fusion", "new_scorer",
			"chat completer is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scorer{completer: completer, temperature: temperature, logger: logger}, nil
}

// Assess asks the LLM for the final assessment. Any failure, transport or
// schema, degrades to the fixed fallback record so a run always completes
// with a usable assessment.
func (s *Scorer) Assess(ctx context.Context, input PromptInput) analysis.FinalAssessment {
	log := logging.WithContext(ctx, s.logger).With(logging.FieldComponent, "fusion")

	content, err := s.completer.CompleteJSON(ctx, assessmentSystemPrompt, BuildAssessmentPrompt(input), s.temperature)
	if err != nil {
		log.Warn("LLM assessment failed, using fallback record", "error", err)
		return FallbackAssessment()
	}

	var assessment analysis.FinalAssessment
	if err := llm.DecodeLLMJSON(content, &assessment); err != nil {
		log.Warn("LLM assessment returned unparseable JSON, using fallback record", "error", err)
		return FallbackAssessment()
	}
	if err := validateAssessment(assessment); err != nil {
		log.Warn("LLM assessment failed validation, using fallback record", "error", err)
		return FallbackAssessment()
	}
	return normalizeAssessment(assessment)
}

func validateAssessment(a analysis.FinalAssessment) error {
	if a.OverallScore < 0 || a.OverallScore > 100 {
		return services.Wrap(services.ErrValidation, "fusion", "validate",
			"overall score out of range", nil)
	}
	switch a.RiskLevel {
	case analysis.RiskLow, analysis.RiskModerate, analysis.RiskHigh, analysis.RiskCritical:
	default:
		return services.Wrap(services.ErrValidation, "fusion", "validate",
			"unrecognized risk level "+a.RiskLevel, nil)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return services.Wrap(services.ErrValidation, "fusion", "validate",
			"confidence out of range", nil)
	}
	return nil
}

// normalizeAssessment replaces nil slices so JSON output always carries
// arrays.
func normalizeAssessment(a analysis.FinalAssessment) analysis.FinalAssessment {
	if a.KeyIndicators == nil {
		a.KeyIndicators = []string{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	if a.AreasOfConcern == nil {
		a.AreasOfConcern = []string{}
	}
	if a.PositiveIndicators == nil {
		a.PositiveIndicators = []string{}
	}
	return a
}

// FallbackAssessment is the exact record substituted when the LLM call fails
// for any reason.
func FallbackAssessment() analysis.FinalAssessment {
	return analysis.FinalAssessment{
		OverallScore:         50,
		RiskLevel:            analysis.RiskModerate,
		Confidence:           0.5,
		KeyIndicators:        []string{"LLM unavailable"},
		Recommendations:      []string{"Consult healthcare professional"},
		AreasOfConcern:       []string{"Unable to complete full analysis"},
		PositiveIndicators:   []string{},
		DistributionInsights: "Full distribution analysis unavailable due to LLM error",
	}
}
