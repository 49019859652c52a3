package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"introspect/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set deepgram.api_key (or DEEPGRAM_API_KEY) and llm.api_key (or GROQ_API_KEY) before analyzing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"Data directory", cfg.Paths.DataDir},
					{"Temp directory", cfg.Paths.TempDir},
					{"Log directory", cfg.Paths.LogDir},
					{"Privacy mode", cfg.Analysis.PrivacyMode},
					{"Interval seconds", fmt.Sprintf("%d", cfg.Analysis.IntervalSeconds)},
					{"Frame skip", fmt.Sprintf("%d", cfg.Analysis.FrameSkip)},
					{"Max chunk tokens", fmt.Sprintf("%d", cfg.Analysis.MaxChunkTokens)},
					{"Deepgram model", cfg.Deepgram.Model},
					{"Deepgram key set", yesNo(strings.TrimSpace(cfg.Deepgram.APIKey) != "")},
					{"LLM model", cfg.LLM.Model},
					{"LLM key set", yesNo(strings.TrimSpace(cfg.LLM.APIKey) != "")},
					{"Model server", cfg.ModelServe.BaseURL},
					{"Ntfy topic set", yesNo(strings.TrimSpace(cfg.Notifications.NtfyTopic) != "")},
					{"Log level", cfg.Logging.Level},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
