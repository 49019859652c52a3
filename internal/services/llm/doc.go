// Package llm provides a client for OpenAI-compatible chat completion
// endpoints with strict JSON response handling.
package llm
