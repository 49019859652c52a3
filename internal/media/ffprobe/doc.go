// Package ffprobe wraps the ffprobe CLI to inspect media containers before
// analysis: stream layout, duration, frame rate, and frame geometry.
package ffprobe
