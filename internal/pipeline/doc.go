// Package pipeline orchestrates one multimodal analysis run: the video
// worker and the audio/text worker execute concurrently, then the fusion
// stage combines their results into the final assessment.
package pipeline
