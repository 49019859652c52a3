package main

import (
	"log/slog"

	"introspect/internal/analysis"
	"introspect/internal/config"
	"introspect/internal/fusion"
	"introspect/internal/media/audioextract"
	"introspect/internal/pipeline"
	"introspect/internal/services/deepgram"
	"introspect/internal/services/llm"
	"introspect/internal/services/modelserve"
	"introspect/internal/textpipe"
	"introspect/internal/video"
)

// runComponents bundles everything an analysis run needs.
type runComponents struct {
	orchestrator *pipeline.Orchestrator
	modelServer  *modelserve.Client
	llmClient    *llm.Client
}

// buildPipeline wires the full analysis pipeline from configuration. The
// progress callback may be nil.
func buildPipeline(cfg *config.Config, mode analysis.PrivacyMode, intervalSeconds, frameSkip int,
	keepTemp bool, progress video.ProgressFunc, logger *slog.Logger) (*runComponents, error) {

	modelServer, err := modelserve.NewClient(modelserve.Config{
		BaseURL:        cfg.ModelServe.BaseURL,
		TimeoutSeconds: cfg.ModelServe.TimeoutSeconds,
	})
	if err != nil {
		return nil, err
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		RetryAttempts:  cfg.LLM.RetryAttempts,
	})

	sttClient, err := deepgram.NewClient(deepgram.Config{
		APIKey:         cfg.Deepgram.APIKey,
		BaseURL:        cfg.Deepgram.BaseURL,
		Model:          cfg.Deepgram.Model,
		TimeoutSeconds: cfg.Deepgram.TimeoutSeconds,
	})
	if err != nil {
		return nil, err
	}

	extractor, err := audioextract.New(cfg.FFmpegBinary())
	if err != nil {
		return nil, err
	}

	var scanOpts []video.ScannerOption
	scanOpts = append(scanOpts, video.WithLogger(logger))
	if progress != nil {
		scanOpts = append(scanOpts, video.WithProgress(progress))
	}
	scanner, err := video.NewScanner(
		video.NewModelServeDetector(modelServer, cfg.Analysis.FaceConfidenceMin),
		video.NewModelServeEmotion(modelServer),
		cfg.ModelServe.VideoLabels,
		scanOpts...,
	)
	if err != nil {
		return nil, err
	}

	textPipeline, err := textpipe.NewPipeline(textpipe.PipelineConfig{
		Classifier:     modelServer,
		Tagger:         modelServer,
		Completer:      llmClient,
		MaxChunkTokens: cfg.Analysis.MaxChunkTokens,
		Temperature:    cfg.LLM.Temperature,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	scorer, err := fusion.NewScorer(llmClient, cfg.LLM.Temperature, logger)
	if err != nil {
		return nil, err
	}

	orchestrator, err := pipeline.New(
		&pipeline.ScanVideoAnalyzer{
			Scanner:         scanner,
			FFmpegBinary:    cfg.FFmpegBinary(),
			FFprobeBinary:   cfg.FFprobeBinary(),
			IntervalSeconds: intervalSeconds,
			FrameSkip:       frameSkip,
		},
		extractor,
		sttClient,
		modelServer,
		textPipeline,
		scorer,
		pipeline.Options{
			TempDir:           cfg.Paths.TempDir,
			PrivacyMode:       mode,
			KeepTempArtifacts: keepTemp,
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &runComponents{
		orchestrator: orchestrator,
		modelServer:  modelServer,
		llmClient:    llmClient,
	}, nil
}
