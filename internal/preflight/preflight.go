// Package preflight verifies the external dependencies of an analysis run
// before any work starts: media binaries, API credentials, and the local
// model server.
package preflight

import (
	"context"
	"fmt"
	"strings"

	"introspect/internal/config"
	"introspect/internal/deps"
	"introspect/internal/services/modelserve"
)

// Check is one verified dependency.
type Check struct {
	Name     string
	OK       bool
	Optional bool
	Detail   string
}

// Pinger verifies the model server is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Run evaluates every dependency the configured pipeline needs. The pinger
// may be nil to skip the model server reachability check.
func Run(ctx context.Context, cfg *config.Config, pinger Pinger) []Check {
	var checks []Check

	for _, status := range deps.CheckBinaries(deps.Media(cfg.FFmpegBinary(), cfg.FFprobeBinary())) {
		detail := status.Command
		if !status.Available {
			detail = status.Detail
		}
		checks = append(checks, Check{
			Name:     status.Name,
			OK:       status.Available,
			Optional: status.Optional,
			Detail:   detail,
		})
	}

	checks = append(checks, credentialCheck("Deepgram API key", cfg.Deepgram.APIKey,
		"set deepgram.api_key or DEEPGRAM_API_KEY"))
	checks = append(checks, credentialCheck("LLM API key", cfg.LLM.APIKey,
		"set llm.api_key or GROQ_API_KEY; runs fall back to heuristic scoring without it"))
	// The LLM is optional: runs complete with the fallback assessment.
	checks[len(checks)-1].Optional = true

	if pinger != nil {
		check := Check{Name: "Model server", Detail: cfg.ModelServe.BaseURL}
		if err := pinger.Ping(ctx); err != nil {
			check.Detail = fmt.Sprintf("unreachable at %s: %v", cfg.ModelServe.BaseURL, err)
		} else {
			check.OK = true
		}
		checks = append(checks, check)
	}
	return checks
}

// NewPinger builds the default model server pinger from configuration.
func NewPinger(cfg *config.Config) (Pinger, error) {
	return modelserve.NewClient(modelserve.Config{
		BaseURL:        cfg.ModelServe.BaseURL,
		TimeoutSeconds: cfg.ModelServe.TimeoutSeconds,
	})
}

// AllRequired reports whether every non-optional check passed.
func AllRequired(checks []Check) bool {
	for _, check := range checks {
		if !check.OK && !check.Optional {
			return false
		}
	}
	return true
}

func credentialCheck(name, value, hint string) Check {
	if strings.TrimSpace(value) == "" {
		return Check{Name: name, Detail: hint}
	}
	return Check{Name: name, OK: true, Detail: "configured"}
}
