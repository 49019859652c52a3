package modelserve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"introspect/internal/services"
)

const defaultTimeout = 120 * time.Second

// Config captures the runtime settings for the local model server.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client talks to the sidecar model server that hosts the face, emotion,
// named-entity, and depression models.
type Client struct {
	baseURL    string
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

// NewClient constructs a model server client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, services.Wrap(services.ErrConfiguration, "modelserve", "new_client",
			"model server base URL is not configured", nil)
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FaceBox is a detected face region in pixel coordinates.
type FaceBox struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// Entity is a named-entity span over the submitted text, expressed as byte
// offsets into the original string.
type Entity struct {
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// DetectFaces submits a JPEG-encoded frame and returns the detected face
// boxes, highest confidence first.
func (c *Client) DetectFaces(ctx context.Context, jpegFrame []byte) ([]FaceBox, error) {
	var parsed struct {
		Faces []FaceBox `json:"faces"`
	}
	if err := c.postBinary(ctx, "/v1/vision/faces", "image/jpeg", jpegFrame, &parsed); err != nil {
		return nil, err
	}
	return parsed.Faces, nil
}

// ClassifyFaceEmotion submits a JPEG-encoded face crop and returns the full
// emotion probability distribution keyed by label.
func (c *Client) ClassifyFaceEmotion(ctx context.Context, jpegCrop []byte) (map[string]float64, error) {
	var parsed struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := c.postBinary(ctx, "/v1/vision/emotion", "image/jpeg", jpegCrop, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Scores) == 0 {
		return nil, services.Wrap(services.ErrTransport, "modelserve", "classify_face_emotion",
			"model returned an empty score map", nil)
	}
	return parsed.Scores, nil
}

// ClassifyAudioEmotion submits WAV audio and returns the emotion probability
// distribution keyed by label.
func (c *Client) ClassifyAudioEmotion(ctx context.Context, wavAudio []byte) (map[string]float64, error) {
	var parsed struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := c.postBinary(ctx, "/v1/audio/emotion", "audio/wav", wavAudio, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Scores) == 0 {
		return nil, services.Wrap(services.ErrTransport, "modelserve", "classify_audio_emotion",
			"model returned an empty score map", nil)
	}
	return parsed.Scores, nil
}

// ClassifyText runs the named text model ("emotion" or "depression") over the
// supplied text and returns the full softmax distribution keyed by label.
func (c *Client) ClassifyText(ctx context.Context, model, text string) (map[string]float64, error) {
	payload := struct {
		Model string `json:"model"`
		Text  string `json:"text"`
	}{Model: model, Text: text}
	var parsed struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := c.postJSON(ctx, "/v1/text/classify", payload, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Scores) == 0 {
		return nil, services.Wrap(services.ErrTransport, "modelserve", "classify_text",
			fmt.Sprintf("model %s returned an empty score map", model), nil)
	}
	return parsed.Scores, nil
}

// TagEntities runs named-entity recognition over the supplied text.
func (c *Client) TagEntities(ctx context.Context, text string) ([]Entity, error) {
	payload := struct {
		Text string `json:"text"`
	}{Text: text}
	var parsed struct {
		Entities []Entity `json:"entities"`
	}
	if err := c.postJSON(ctx, "/v1/text/entities", payload, &parsed); err != nil {
		return nil, err
	}
	return parsed.Entities, nil
}

// Ping verifies the model server is reachable and healthy.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return services.Wrap(services.ErrTransport, "modelserve", "ping", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "modelserve", "ping", "http error", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransport, "modelserve", "ping",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrTransport, "modelserve", "post", "encode body", err)
	}
	return c.postBinary(ctx, path, "application/json", encoded, target)
}

func (c *Client) postBinary(ctx context.Context, path, contentType string, body []byte, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrTransport, "modelserve", "post", "build request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "modelserve", "post",
			fmt.Sprintf("http error for %s", path), err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransport, "modelserve", "post",
			fmt.Sprintf("read response for %s", path), err)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransport, "modelserve", "post",
			fmt.Sprintf("%s: http %d: %s", path, resp.StatusCode, summarize(data)), nil)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return services.Wrap(services.ErrTransport, "modelserve", "post",
			fmt.Sprintf("decode response for %s", path), err)
	}
	return nil
}

func summarize(body []byte) string {
	s := strings.TrimSpace(string(body))
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
