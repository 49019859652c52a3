package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"introspect/internal/analysis"
	"introspect/internal/services"
)

const (
	defaultTimeout = 60 * time.Second
	listenPath     = "/v1/listen"
)

// Config captures the runtime settings for the Deepgram transcription API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client transcribes audio files through Deepgram's prerecorded endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Deepgram client. The API key is required.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "deepgram", "new_client",
			"Deepgram API key is not configured", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepgram.com"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []struct {
					Word  string  `json:"word"`
					Start float64 `json:"start"`
					End   float64 `json:"end"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe uploads the audio file at audioPath and returns the recognized
// transcript. Duration is taken from the end timestamp of the last word, or
// zero when no words were recognized.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (analysis.Transcript, error) {
	var empty analysis.Transcript

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "deepgram", "transcribe",
			fmt.Sprintf("read audio file %s", audioPath), err)
	}

	query := url.Values{}
	query.Set("model", c.cfg.Model)
	query.Set("smart_format", "true")
	query.Set("punctuate", "true")
	query.Set("diarize", "false")
	endpoint := c.cfg.BaseURL + listenPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return empty, services.Wrap(services.ErrTransport, "deepgram", "transcribe", "build request", err)
	}
	req.Header.Set("Authorization", "Token "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrTransport, "deepgram", "transcribe", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, services.Wrap(services.ErrTransport, "deepgram", "transcribe", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return empty, services.Wrap(services.ErrTransport, "deepgram", "transcribe",
			fmt.Sprintf("http %d: %s", resp.StatusCode, truncateBody(body)), nil)
	}

	var parsed listenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return empty, services.Wrap(services.ErrTransport, "deepgram", "transcribe", "decode response", err)
	}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return empty, services.Wrap(services.ErrTransport, "deepgram", "transcribe",
			"response contained no transcription alternatives", nil)
	}

	alt := parsed.Results.Channels[0].Alternatives[0]
	transcript := analysis.Transcript{
		Text:       alt.Transcript,
		Confidence: alt.Confidence,
		Words:      make([]analysis.Word, 0, len(alt.Words)),
	}
	for _, w := range alt.Words {
		transcript.Words = append(transcript.Words, analysis.Word{
			Word:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}
	if n := len(transcript.Words); n > 0 {
		transcript.Duration = transcript.Words[n-1].End
	}
	return transcript, nil
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
