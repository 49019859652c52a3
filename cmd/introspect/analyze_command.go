package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"introspect/internal/analysis"
	"introspect/internal/config"
	"introspect/internal/history"
	"introspect/internal/notifications"
	"introspect/internal/video"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var privacyFlag string
	var intervalFlag int
	var frameSkipFlag int
	var jsonFlag bool
	var outputFlag string
	var keepTempFlag bool
	var noSaveFlag bool

	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Run the full multimodal analysis on a video file",
		Args:  cobra.ExactArgs(1),
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
			interval := cfg.Analysis.IntervalSeconds
			if intervalFlag > 0 {
				interval = intervalFlag
			}
			frameSkip := cfg.Analysis.FrameSkip
			if frameSkipFlag > 0 {
				frameSkip = frameSkipFlag
			}
			keepTemp := cfg.Analysis.KeepTempArtifacts || keepTempFlag

			var progress video.ProgressFunc
			if !jsonFlag && stdoutIsTerminal() {
				out := cmd.OutOrStdout()
				progress = func(record analysis.IntervalRecord, total int) {
					fmt.Fprintf(out, "interval %d [%.0fs-%.0fs]: %s (face rate %.0f%%)\n",
						record.IntervalNumber, record.StartTime, record.EndTime,
						record.DominantEmotion, record.FaceDetectionRate*100)
				}
			}

			components, err := buildPipeline(cfg, mode, interval, frameSkip, keepTemp, progress, logger)
			if err != nil {
				return err
			}

			result, err := components.orchestrator.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !noSaveFlag {
				if err := saveRun(cmd, cfg.Paths.DataDir, result); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not save run to history: %v\n", err)
				}
			}
			notify(cmd, cfg, result)

			if outputFlag != "" {
				if err := writeResultFile(outputFlag, result); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote full result to %s\n", outputFlag)
			}
			if jsonFlag {
				return writeJSON(cmd, result)
			}
			renderResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&privacyFlag, "privacy", "", "Privacy mode: full_privacy or anonymized")
	cmd.Flags().IntVar(&intervalFlag, "interval", 0, "Emotion aggregation interval in seconds")
	cmd.Flags().IntVar(&frameSkipFlag, "frame-skip", 0, "Analyze every Nth frame")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the full result as JSON")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the full result JSON to a file")
	cmd.Flags().BoolVar(&keepTempFlag, "keep-temp", false, "Keep the extracted temp audio file")
	cmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "Do not record the run in history")
	return cmd
}

func saveRun(cmd *cobra.Command, dataDir string, result *analysis.Result) error {
	store, err := history.Open(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRun(cmd.Context(), result)
}

// notify pushes the run outcome through ntfy. Failures are reported but do
// not fail the command; by the time we notify, the analysis already
// succeeded.
func notify(cmd *cobra.Command, cfg *config.Config, result *analysis.Result) {
	svc := notifications.NewService(cfg)
	var err error
	switch result.Summary.RiskLevel {
	case analysis.RiskHigh, analysis.RiskCritical:
		err = svc.NotifyHighRisk(cmd.Context(), result.Summary)
	default:
		err = svc.NotifyAnalysisComplete(cmd.Context(), result.Summary)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: notification failed: %v\n", err)
	}
}

func writeResultFile(path string, result *analysis.Result) error {
	encoded, err := marshalResult(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write result file: %w", err)
	}
	return nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}
