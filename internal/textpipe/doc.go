// Package textpipe runs the transcript analysis pipeline: local emotion and
// depression classification with token-budget chunking, and the
// privacy-gated anonymization and LLM analysis passes.
package textpipe
