// Package logging assembles structured slog loggers used across Introspect.
//
// It centralizes level and output plumbing and exposes context-aware helpers
// so pipeline code can automatically tag log lines with run IDs, stages, and
// worker names. The package also provides a no-op logger for tests.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape as the rest of the system.
package logging
