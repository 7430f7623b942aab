package stt

import "context"

// Mock is a test double for the Client interface.
type Mock struct {
	TranscribeFunc func(ctx context.Context, req Request) (string, error)
	Calls          []Request
}

func (m *Mock) Transcribe(ctx context.Context, req Request) (string, error) {
	m.Calls = append(m.Calls, req)
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, req)
	}
	return "", nil
}
