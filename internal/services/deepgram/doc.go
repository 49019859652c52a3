// Package deepgram transcribes recorded audio through Deepgram's
// prerecorded speech-to-text API.
package deepgram
