package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.IntervalSeconds <= 0 {
		return errors.New("analysis.interval_seconds must be positive")
	}
	if c.Analysis.FrameSkip < 1 {
		return errors.New("analysis.frame_skip must be at least 1")
	}
	switch c.Analysis.PrivacyMode {
	case "full_privacy", "anonymized":
	default:
		return fmt.Errorf("analysis.privacy_mode must be %q or %q, got %q", "full_privacy", "anonymized", c.Analysis.PrivacyMode)
	}
	if c.Analysis.FaceConfidenceMin <= 0 || c.Analysis.FaceConfidenceMin > 1 {
		return errors.New("analysis.face_confidence_min must be in (0, 1]")
	}
	if c.Analysis.MaxChunkTokens < 32 {
		return errors.New("analysis.max_chunk_tokens must be at least 32")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"deepgram.timeout_seconds":      c.Deepgram.TimeoutSeconds,
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
		"modelserve.timeout_seconds":    c.ModelServe.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
