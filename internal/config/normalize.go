package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDeepgram()
	c.normalizeLLM()
	c.normalizeModelServe()
	c.normalizeAnalysis()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDeepgram() {
	if c.Deepgram.APIKey == "" {
		if value, ok := os.LookupEnv("DEEPGRAM_API_KEY"); ok {
			c.Deepgram.APIKey = value
		}
	}
	c.Deepgram.BaseURL = strings.TrimSpace(c.Deepgram.BaseURL)
	if c.Deepgram.BaseURL == "" {
		c.Deepgram.BaseURL = defaultDeepgramBaseURL
	}
	if strings.TrimSpace(c.Deepgram.Model) == "" {
		c.Deepgram.Model = defaultDeepgramModel
	}
	if c.Deepgram.TimeoutSeconds <= 0 {
		c.Deepgram.TimeoutSeconds = defaultDeepgramTimeout
	}
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("GROQ_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = defaultLLMTemperature
	}
}

func (c *Config) normalizeModelServe() {
	c.ModelServe.BaseURL = strings.TrimSpace(c.ModelServe.BaseURL)
	if c.ModelServe.BaseURL == "" {
		c.ModelServe.BaseURL = defaultModelServeBaseURL
	}
	if c.ModelServe.TimeoutSeconds <= 0 {
		c.ModelServe.TimeoutSeconds = defaultModelServeTimeout
	}
	if len(c.ModelServe.VideoLabels) == 0 {
		c.ModelServe.VideoLabels = Default().ModelServe.VideoLabels
	}
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.IntervalSeconds <= 0 {
		c.Analysis.IntervalSeconds = defaultIntervalSeconds
	}
	if c.Analysis.FrameSkip <= 0 {
		c.Analysis.FrameSkip = defaultFrameSkip
	}
	c.Analysis.PrivacyMode = strings.ToLower(strings.TrimSpace(c.Analysis.PrivacyMode))
	if c.Analysis.PrivacyMode == "" {
		c.Analysis.PrivacyMode = defaultPrivacyMode
	}
	if c.Analysis.MaxChunkTokens <= 0 {
		c.Analysis.MaxChunkTokens = defaultMaxChunkTokens
	}
	if c.Analysis.FaceConfidenceMin <= 0 {
		c.Analysis.FaceConfidenceMin = defaultFaceConfidenceMin
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
