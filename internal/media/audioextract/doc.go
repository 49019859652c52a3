// Package audioextract demuxes a video into the normalized mono 16kHz PCM
// waveform consumed by the transcriber and the audio emotion classifier.
package audioextract
