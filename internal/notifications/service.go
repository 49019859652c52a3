package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"introspect/internal/analysis"
	"introspect/internal/config"
)

const userAgent = "Introspect-Go/0.1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyAnalysisComplete(ctx context.Context, summary analysis.Summary) error
	NotifyHighRisk(ctx context.Context, summary analysis.Summary) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		highRiskOnly: cfg.Notifications.HighRiskOnly,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	highRiskOnly bool
}

func (n *ntfyService) NotifyAnalysisComplete(ctx context.Context, summary analysis.Summary) error {
	if n.highRiskOnly {
		return nil
	}
	data := payload{
		title: "Introspect - Analysis Complete",
		message: fmt.Sprintf("Score %d, risk %s (%d intervals)",
			summary.MentalHealthScore, summary.RiskLevel, summary.TotalIntervals),
		tags: []string{"introspect", "analysis", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyHighRisk(ctx context.Context, summary analysis.Summary) error {
	data := payload{
		title: "Introspect - High Risk Result",
		message: fmt.Sprintf("Risk level %s with score %d. Review the full assessment.",
			summary.RiskLevel, summary.MentalHealthScore),
		tags:     []string{"introspect", "risk", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Introspect - Error",
		message:  builder.String(),
		tags:     []string{"introspect", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Introspect - Test",
		message:  "Notification system test",
		tags:     []string{"introspect", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyAnalysisComplete(context.Context, analysis.Summary) error { return nil }
func (noopService) NotifyHighRisk(context.Context, analysis.Summary) error         { return nil }
func (noopService) NotifyError(context.Context, error, string) error               { return nil }
func (noopService) TestNotification(context.Context) error                         { return nil }
