package stt

import "context"

// Request describes one audio payload to transcribe. The payload is already
// spooled to disk by the relay; providers read it from FilePath.
type Request struct {
	FilePath string
	MIMEType string // declared format, e.g. "audio/webm"
}

// Client defines the interface for speech-to-text providers. Transcription
// is batch-mode: one payload in, one best-effort transcript out, which may
// be empty for silence or noise.
type Client interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}
