package config

const (
	defaultDataDir            = "~/.local/share/introspect"
	defaultTempDir            = "~/.local/share/introspect/tmp"
	defaultLogDir             = "~/.local/share/introspect/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultDeepgramBaseURL    = "https://api.deepgram.com"
	defaultDeepgramModel      = "nova-2"
	defaultDeepgramTimeout    = 60
	defaultLLMBaseURL         = "https://api.groq.com/openai/v1/chat/completions"
	defaultLLMModel           = "llama-3.1-8b-instant"
	defaultLLMTimeoutSeconds  = 30
	defaultLLMRetryAttempts   = 1
	defaultLLMTemperature     = 0.2
	defaultModelServeBaseURL  = "http://127.0.0.1:8573"
	defaultModelServeTimeout  = 120
	defaultIntervalSeconds    = 5
	defaultFrameSkip          = 2
	defaultPrivacyMode        = "anonymized"
	defaultMaxChunkTokens     = 480
	defaultFaceConfidenceMin  = 0.9
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			TempDir: defaultTempDir,
			LogDir:  defaultLogDir,
		},
		Deepgram: Deepgram{
			BaseURL:        defaultDeepgramBaseURL,
			Model:          defaultDeepgramModel,
			TimeoutSeconds: defaultDeepgramTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
			Temperature:    defaultLLMTemperature,
		},
		ModelServe: ModelServe{
			BaseURL:        defaultModelServeBaseURL,
			TimeoutSeconds: defaultModelServeTimeout,
			VideoLabels: []string{
				"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise",
			},
		},
		Analysis: Analysis{
			IntervalSeconds:   defaultIntervalSeconds,
			FrameSkip:         defaultFrameSkip,
			PrivacyMode:       defaultPrivacyMode,
			MaxChunkTokens:    defaultMaxChunkTokens,
			FaceConfidenceMin: defaultFaceConfidenceMin,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			HighRiskOnly:   true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
