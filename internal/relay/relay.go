// Package relay turns raw audio into cleaned text and text into first-person
// summaries. Each operation is stateless and single-shot: no retries, no
// streaming, no caching, and nothing survives the request.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/voiyce/voiyce/internal/eventlog"
	"github.com/voiyce/voiyce/internal/llm"
	"github.com/voiyce/voiyce/internal/stt"
	"github.com/voiyce/voiyce/internal/upload"
)

// ErrInvalidInput marks requests that were rejected before any external call.
var ErrInvalidInput = errors.New("invalid input")

// Pipeline stages, used to attribute upstream failures.
const (
	StageTranscription = "transcription"
	StageCleanup       = "cleanup"
	StageSummarization = "summarization"
)

// UpstreamError wraps a failure of one external call with the stage it
// belongs to, so the two chained calls inside Transcribe stay independently
// attributable.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// RawTranscript is the typed intermediate between the speech-to-text step
// and the cleanup step. It may be empty; the cleanup prompt owns that case.
type RawTranscript struct {
	Text string
}

// Service orchestrates the external providers for both relay operations.
type Service struct {
	stt    stt.Client
	llm    llm.Client
	spool  *upload.Spool
	events *eventlog.Logger
	logger *log.Logger
}

// NewService creates a relay service.
func NewService(sttClient stt.Client, llmClient llm.Client, spool *upload.Spool, events *eventlog.Logger, logger *log.Logger) *Service {
	return &Service{
		stt:    sttClient,
		llm:    llmClient,
		spool:  spool,
		events: events,
		logger: logger,
	}
}

// Transcribe spools the audio payload, transcribes it, and cleans the raw
// transcript. Speech-to-text strictly precedes cleanup: the cleanup input is
// the transcription output. The spooled file is removed on every exit path.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename, mimeType string) (string, error) {
	if audio == nil {
		return "", fmt.Errorf("no audio payload: %w", ErrInvalidInput)
	}

	requestID := newRequestID()

	path, err := s.spool.Save(audio, filename)
	if err != nil {
		return "", &UpstreamError{Stage: StageTranscription, Err: err}
	}
	defer func() {
		s.spool.Remove(path)
		s.events.Log(requestID, eventlog.EventSpoolDeleted, nil)
	}()

	s.events.Log(requestID, eventlog.EventUploadReceived, map[string]any{
		"file": filename,
		"mime": mimeType,
	})

	raw, err := s.transcribeStep(ctx, requestID, path, mimeType)
	if err != nil {
		return "", err
	}
	return s.cleanupStep(ctx, requestID, raw)
}

func (s *Service) transcribeStep(ctx context.Context, requestID, path, mimeType string) (RawTranscript, error) {
	text, err := s.stt.Transcribe(ctx, stt.Request{FilePath: path, MIMEType: mimeType})
	if err != nil {
		s.fail(requestID, StageTranscription, err)
		return RawTranscript{}, &UpstreamError{Stage: StageTranscription, Err: err}
	}
	s.events.Log(requestID, eventlog.EventSTTCompleted, map[string]any{"chars": len(text)})
	return RawTranscript{Text: text}, nil
}

func (s *Service) cleanupStep(ctx context.Context, requestID string, raw RawTranscript) (string, error) {
	// Raw text is forwarded even when empty; the cleanup prompt answers
	// with the fixed fallback sentence for unintelligible input.
	cleaned, err := s.llm.Refine(ctx, raw.Text)
	if err != nil {
		s.fail(requestID, StageCleanup, err)
		return "", &UpstreamError{Stage: StageCleanup, Err: err}
	}
	s.events.Log(requestID, eventlog.EventCleanupCompleted, map[string]any{"chars": len(cleaned)})
	return cleaned, nil
}

// Summarize produces a first-person summary of already-obtained text. It is
// an independent operation, not a continuation of a transcribe request.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("no text: %w", ErrInvalidInput)
	}

	requestID := newRequestID()
	s.events.Log(requestID, eventlog.EventSummarizeRequested, map[string]any{"chars": len(text)})

	summary, err := s.llm.Summarize(ctx, text)
	if err != nil {
		s.fail(requestID, StageSummarization, err)
		return "", &UpstreamError{Stage: StageSummarization, Err: err}
	}
	s.events.Log(requestID, eventlog.EventSummarizeCompleted, map[string]any{"chars": len(summary)})
	return summary, nil
}

func (s *Service) fail(requestID, stage string, err error) {
	if s.logger != nil {
		s.logger.Printf("relay: %s failed: %v", stage, err)
	}
	s.events.Log(requestID, eventlog.EventRelayError, map[string]any{
		"stage": stage,
		"error": err.Error(),
	})
}

func newRequestID() string {
	return fmt.Sprintf("%x", time.Now().UnixNano())
}
