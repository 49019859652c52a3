// Package services defines shared utilities consumed by pipeline workers and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and worker
//     names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (precondition vs transport vs external tool) consistently across the
//     pipeline.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services
