package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"introspect/internal/analysis"
	"introspect/internal/fusion"
	"introspect/internal/services/llm"
	"introspect/internal/services/modelserve"
	"introspect/internal/textpipe"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var privacyFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "journal [file]",
		Short: "Analyze a written journal entry (text only, no video)",
		Long: "Runs the text analysis pipeline over a journal entry read from a file or stdin,\n" +
			"then estimates risk with the rule-based heuristic instead of the LLM scorer.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			privacy := cfg.Analysis.PrivacyMode
			if strings.TrimSpace(privacyFlag) != "" {
				privacy = privacyFlag
			}
			mode, err := analysis.ParsePrivacyMode(privacy)
			if err != nil {
				return err
			}

			text, err := readJournalText(cmd, args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("journal entry is empty")
			}

			modelServer, err := modelserve.NewClient(modelserve.Config{
				BaseURL:        cfg.ModelServe.BaseURL,
				TimeoutSeconds: cfg.ModelServe.TimeoutSeconds,
			})
			if err != nil {
				return err
			}
			llmClient := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
				RetryAttempts:  cfg.LLM.RetryAttempts,
			})
			pipeline, err := textpipe.NewPipeline(textpipe.PipelineConfig{
				Classifier:     modelServer,
				Tagger:         modelServer,
				Completer:      llmClient,
				MaxChunkTokens: cfg.Analysis.MaxChunkTokens,
				Temperature:    cfg.LLM.Temperature,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			result, _, err := pipeline.Analyze(cmd.Context(), text, mode)
			if err != nil {
				return err
			}
			score, level := fusion.HeuristicRisk(result.Depression.Severity, result.Emotion.DominantEmotion, "")

			if jsonFlag {
				return writeJSON(cmd, struct {
					TextAnalysis analysis.TextAnalysis `json:"text_analysis"`
					RiskScore    float64               `json:"risk_score"`
					RiskLevel    string                `json:"risk_level"`
					PrivacyMode  analysis.PrivacyMode  `json:"privacy_mode"`
				}{result, score, level, mode})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Risk level", titleCaser.String(level)},
					{"Risk score", formatScore(score)},
					{"Text emotion", titleCaser.String(result.Emotion.DominantEmotion)},
					{"Depression level", titleCaser.String(result.Depression.DepressionLevel)},
					{"Severity", fmt.Sprintf("%d / 10", result.Depression.Severity)},
					{"Chunks analyzed", fmt.Sprintf("%d", result.Emotion.ChunksAnalyzed)},
					{"Chunking applied", yesNo(result.Emotion.ChunkingApplied)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			fmt.Fprintln(out)
			renderDistribution(out, "Emotion distribution", result.Emotion.AllEmotions)
			renderDistribution(out, "Depression distribution", result.Depression.AllScores)
			if result.LLMAnalysis != nil {
				fmt.Fprintf(out, "Sentiment: %s (severity %d)\n",
					titleCaser.String(result.LLMAnalysis.Sentiment), result.LLMAnalysis.Severity)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&privacyFlag, "privacy", "", "Privacy mode: full_privacy or anonymized")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the result as JSON")
	return cmd
}

func readJournalText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read journal from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read journal file: %w", err)
	}
	return string(data), nil
}
