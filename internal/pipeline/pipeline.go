package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"introspect/internal/analysis"
	"introspect/internal/fusion"
	"introspect/internal/logging"
	"introspect/internal/services"
)

// Worker tags used to pair results back up at the rendezvous.
const (
	workerVideo     = "video"
	workerAudioText = "audio_text"
)

// VideoAnalyzer produces the facial emotion timeline for a video file.
type VideoAnalyzer interface {
	AnalyzeVideo(ctx context.Context, path string) (analysis.Timeline, error)
}

// AudioExtractor writes the mono 16 kHz PCM track of a video to dest.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, dest string) (string, error)
}

// Transcriber converts an audio file into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (analysis.Transcript, error)
}

// AudioClassifier scores the emotion distribution of WAV audio.
type AudioClassifier interface {
	ClassifyAudioEmotion(ctx context.Context, wavAudio []byte) (map[string]float64, error)
}

// TextAnalyzer runs the transcript analysis pipeline. The second return
// value is the redacted text that left the process, empty under full
// privacy.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string, mode analysis.PrivacyMode) (analysis.TextAnalysis, string, error)
}

// Assessor produces the final structured assessment.
type Assessor interface {
	Assess(ctx context.Context, input fusion.PromptInput) analysis.FinalAssessment
}

// Options carries the per-run tunables the orchestrator needs.
type Options struct {
	TempDir           string
	PrivacyMode       analysis.PrivacyMode
	KeepTempArtifacts bool
}

// Orchestrator drives one analysis run: the video worker and the audio/text
// worker execute concurrently, then the fusion stage combines their results.
type Orchestrator struct {
	video      VideoAnalyzer
	extractor  AudioExtractor
	stt        Transcriber
	audioModel AudioClassifier
	text       TextAnalyzer
	assessor   Assessor
	opts       Options
	logger     *slog.Logger
}

// New constructs an orchestrator. All collaborators are required.
func New(video VideoAnalyzer, extractor AudioExtractor, stt Transcriber,
	audioModel AudioClassifier, text TextAnalyzer, assessor Assessor,
	opts Options, logger *slog.Logger) (*Orchestrator, error) {
	if video == nil || extractor == nil || stt == nil || audioModel == nil || text == nil || assessor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new",
			"all pipeline collaborators are required", nil)
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		video:      video,
		extractor:  extractor,
		stt:        stt,
		audioModel: audioModel,
		text:       text,
		assessor:   assessor,
		opts:       opts,
		logger:     logger,
	}, nil
}

// workerResult is one tagged message on the rendezvous channel.
type workerResult struct {
	tag string
	err error

	timeline analysis.Timeline

	transcript   analysis.Transcript
	audioEmotion analysis.AudioEmotion
	textAnalysis analysis.TextAnalysis
	outboundText string
}

// Run executes the full multimodal analysis for the video at videoPath.
func (o *Orchestrator) Run(ctx context.Context, videoPath string) (*analysis.Result, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "run",
			fmt.Sprintf("video file %s is not readable", videoPath), err)
	}

	runID := uuid.New().String()
	ctx = services.WithRunID(ctx, runID)
	log := logging.WithContext(ctx, o.logger).With(logging.FieldComponent, "pipeline")
	log.Info("analysis run started", "video", videoPath, "privacy_mode", o.opts.PrivacyMode.String())

	tempAudio := filepath.Join(o.opts.TempDir, fmt.Sprintf("temp_audio_%s.wav", runID))
	defer func() {
		if o.opts.KeepTempArtifacts {
			log.Info("keeping temp audio artifact", "path", tempAudio)
			return
		}
		if err := os.Remove(tempAudio); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove temp audio", "path", tempAudio, "error", err)
		}
	}()

	results := make(chan workerResult, 2)
	go o.runVideoWorker(services.WithWorker(ctx, workerVideo), videoPath, results)
	go o.runAudioTextWorker(services.WithWorker(ctx, workerAudioText), videoPath, tempAudio, results)

	// Exactly two results arrive, one per worker, in either order.
	byTag := make(map[string]workerResult, 2)
	for i := 0; i < 2; i++ {
		result := <-results
		byTag[result.tag] = result
	}

	// The video side is the primary modality, so its failure is reported
	// first even when both workers failed.
	if result := byTag[workerVideo]; result.err != nil {
		return nil, fmt.Errorf("video analysis failed: %w", result.err)
	}
	if result := byTag[workerAudioText]; result.err != nil {
		return nil, fmt.Errorf("audio and text analysis failed: %w", result.err)
	}

	videoResult := byTag[workerVideo]
	audioResult := byTag[workerAudioText]

	assessment := o.assessor.Assess(services.WithStage(ctx, "fusion"), fusion.PromptInput{
		VideoSummary:      videoResult.timeline.Summary,
		IntervalCount:     len(videoResult.timeline.Intervals),
		IntervalDominants: fusion.IntervalDominantCounts(videoResult.timeline.Intervals),
		AudioEmotion:      audioResult.audioEmotion,
		TextEmotion:       audioResult.textAnalysis.Emotion,
		Depression:        audioResult.textAnalysis.Depression,
		DetailedAnalysis:  audioResult.textAnalysis.LLMAnalysis,
		TranscriptText:    audioResult.outboundText,
		PrivacyMode:       o.opts.PrivacyMode,
	})

	result := &analysis.Result{
		RunID:           runID,
		VideoPath:       videoPath,
		VideoEmotion:    videoResult.timeline,
		Transcript:      audioResult.transcript,
		AudioEmotion:    audioResult.audioEmotion,
		TextAnalysis:    audioResult.textAnalysis,
		PrivacyMode:     o.opts.PrivacyMode,
		FinalAssessment: assessment,
		Summary: fusion.BuildSummary(videoResult.timeline, audioResult.audioEmotion,
			audioResult.textAnalysis, assessment),
	}
	log.Info("analysis run finished",
		"score", result.Summary.MentalHealthScore,
		"risk", result.Summary.RiskLevel,
		"intervals", result.Summary.TotalIntervals,
	)
	return result, nil
}

func (o *Orchestrator) runVideoWorker(ctx context.Context, videoPath string, results chan<- workerResult) {
	log := logging.WithContext(ctx, o.logger).With(logging.FieldComponent, "pipeline")
	log.Info("video worker started")

	timeline, err := o.video.AnalyzeVideo(ctx, videoPath)
	if err != nil {
		results <- workerResult{tag: workerVideo, err: err}
		return
	}
	results <- workerResult{tag: workerVideo, timeline: timeline}
}

func (o *Orchestrator) runAudioTextWorker(ctx context.Context, videoPath, tempAudio string, results chan<- workerResult) {
	log := logging.WithContext(ctx, o.logger).With(logging.FieldComponent, "pipeline")
	log.Info("audio worker started")

	fail := func(err error) {
		results <- workerResult{tag: workerAudioText, err: err}
	}

	audioPath, err := o.extractor.Extract(services.WithStage(ctx, "extract"), videoPath, tempAudio)
	if err != nil {
		fail(err)
		return
	}
	transcript, err := o.stt.Transcribe(services.WithStage(ctx, "transcribe"), audioPath)
	if err != nil {
		fail(err)
		return
	}
	wav, err := os.ReadFile(audioPath)
	if err != nil {
		fail(services.Wrap(services.ErrValidation, "pipeline", "audio_worker",
			"read extracted audio", err))
		return
	}
	scores, err := o.audioModel.ClassifyAudioEmotion(services.WithStage(ctx, "audio_emotion"), wav)
	if err != nil {
		fail(err)
		return
	}
	textAnalysis, outbound, err := o.text.Analyze(services.WithStage(ctx, "text"), transcript.Text, o.opts.PrivacyMode)
	if err != nil {
		fail(err)
		return
	}

	results <- workerResult{
		tag:          workerAudioText,
		transcript:   transcript,
		audioEmotion: MapAudioEmotion(scores),
		textAnalysis: textAnalysis,
		outboundText: outbound,
	}
}
