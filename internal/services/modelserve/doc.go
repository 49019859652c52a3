// Package modelserve is the client for the sidecar inference server that
// hosts the face detection, facial emotion, audio emotion, text
// classification, and named-entity models.
package modelserve
