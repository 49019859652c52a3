// Package video decodes a video into frames, runs face detection and facial
// emotion classification over sampled frames, and aggregates the detections
// into a fixed-interval emotion timeline.
package video
