// Package recorder implements the dictation widget: a state machine that
// owns the capture lifecycle, accumulates audio fragments, talks to the
// relay, and commits reviewed text to the page or the clipboard.
package recorder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// State is the widget's position in the capture lifecycle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
	StateReviewing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateReviewing:
		return "reviewing"
	default:
		return "unknown"
	}
}

// Relay is the widget's view of the transcription backend.
type Relay interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// Notifier shows one-line user-visible notices (toasts).
type Notifier interface {
	Notify(msg string)
}

// Config holds the widget's collaborators. Device and Relay are required;
// everything else may be nil.
type Config struct {
	Device    CaptureDevice
	Relay     Relay
	Renderer  LevelRenderer
	Notifier  Notifier
	Committer *Committer
	MIMEType  string // declared format of packaged audio, default "audio/webm"
	Logger    *log.Logger
}

// Widget is one recorder instance. A page hosts a single widget that lives
// across sessions; each Idle→...→Idle cycle is one session. All state that
// used to live in page-level globals is owned here so independent widgets
// never cross-contaminate.
type Widget struct {
	mu        sync.Mutex
	state     State
	stream    CaptureStream
	pumpDone  chan struct{}
	chunks    [][]byte
	review    string // current (possibly user-edited) review text
	startedAt time.Time
	destroyed bool

	device    CaptureDevice
	relay     Relay
	renderer  LevelRenderer
	notifier  Notifier
	committer *Committer
	mimeType  string
	logger    *log.Logger
}

// New creates a widget in the Idle state.
func New(cfg Config) *Widget {
	mimeType := cfg.MIMEType
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	committer := cfg.Committer
	if committer == nil {
		committer = NewCommitter(nil, logger)
	}
	return &Widget{
		device:    cfg.Device,
		relay:     cfg.Relay,
		renderer:  cfg.Renderer,
		notifier:  cfg.Notifier,
		committer: committer,
		mimeType:  mimeType,
		logger:    logger,
	}
}

// State returns the current state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ReviewText returns the text currently under review.
func (w *Widget) ReviewText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.review
}

// SetReviewText stores a user edit of the review text. New transcript
// segments append to this live value, so edits are never overwritten.
func (w *Widget) SetReviewText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateReviewing {
		w.review = text
	}
}

// Committer exposes the commit sink so hosts can update the focus target.
func (w *Widget) Committer() *Committer { return w.committer }

// ToggleCapture starts capture from Idle or Reviewing (an append segment),
// stops and submits from Recording, and is a no-op while Processing.
func (w *Widget) ToggleCapture(ctx context.Context) {
	switch w.State() {
	case StateIdle, StateReviewing:
		w.startCapture(ctx)
	case StateRecording:
		w.StopAndSubmit(ctx)
	}
}

func (w *Widget) startCapture(ctx context.Context) {
	w.mu.Lock()
	if w.destroyed || w.stream != nil || (w.state != StateIdle && w.state != StateReviewing) {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	stream, err := w.device.Open(ctx)
	if err != nil {
		w.logger.Printf("recorder: capture failed: %v", err)
		w.notify(captureNotice(err))
		return
	}

	w.mu.Lock()
	if w.destroyed || w.stream != nil {
		w.mu.Unlock()
		_ = stream.Close()
		return
	}
	w.stream = stream
	w.chunks = nil
	w.state = StateRecording
	w.startedAt = time.Now()
	done := make(chan struct{})
	w.pumpDone = done
	w.mu.Unlock()

	go w.pump(stream, done)
}

// pump buffers incoming frames and feeds the visualization. Buffering comes
// first; rendering failures are swallowed.
func (w *Widget) pump(stream CaptureStream, done chan struct{}) {
	defer close(done)
	for frame := range stream.Frames() {
		w.mu.Lock()
		// Processing still buffers: the tail of frames delivered between
		// the stop request and stream release belongs to the recording.
		if w.state == StateRecording || w.state == StateProcessing {
			w.chunks = append(w.chunks, frame)
		}
		w.mu.Unlock()
		w.render(Level(frame))
	}
}

func (w *Widget) render(level float64) {
	if w.renderer == nil {
		return
	}
	defer func() { _ = recover() }()
	if err := w.renderer.RenderLevel(level); err != nil {
		w.logger.Printf("recorder: render: %v", err)
	}
}

// releaseStream stops capture and waits for the frame pump to drain, so the
// microphone and audio context are gone before anything else happens.
func (w *Widget) releaseStream() {
	w.mu.Lock()
	stream, done := w.stream, w.pumpDone
	w.stream, w.pumpDone = nil, nil
	w.mu.Unlock()

	if stream == nil {
		return
	}
	_ = stream.Close()
	if done != nil {
		<-done
	}
}

// StopAndSubmit ends the current recording and sends the packaged audio to
// the relay. Valid only from Recording. The stream is released before the
// request goes out. With zero buffered fragments no request is issued.
func (w *Widget) StopAndSubmit(ctx context.Context) {
	w.mu.Lock()
	if w.state != StateRecording {
		w.mu.Unlock()
		return
	}
	w.state = StateProcessing
	w.mu.Unlock()

	w.releaseStream()

	w.mu.Lock()
	chunks := w.chunks
	w.chunks = nil
	w.mu.Unlock()

	if len(chunks) == 0 {
		w.notify("Nothing recorded.")
		w.settle()
		return
	}

	audio := bytes.Join(chunks, nil)
	text, err := w.relay.Transcribe(ctx, audio, w.mimeType)
	if err != nil {
		w.logger.Printf("recorder: transcribe: %v", err)
		w.notify("Transcription failed. Please try again.")
		w.settle()
		return
	}

	w.mu.Lock()
	if w.state != StateProcessing { // cancelled while the request was in flight
		w.mu.Unlock()
		return
	}
	if w.review != "" {
		w.review = w.review + " " + text
	} else {
		w.review = text
	}
	w.state = StateReviewing
	w.mu.Unlock()
}

// settle leaves Processing after a terminal failure: back to Reviewing when
// earlier segments are still under review, otherwise Idle. The widget is
// never left stuck in Processing.
func (w *Widget) settle() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateProcessing {
		return
	}
	if w.review != "" {
		w.state = StateReviewing
	} else {
		w.state = StateIdle
	}
}

// Cancel discards all buffered audio and any partially-entered text and
// returns to Idle. Safe from any state and idempotent.
func (w *Widget) Cancel() {
	w.releaseStream()

	w.mu.Lock()
	w.chunks = nil
	w.review = ""
	w.state = StateIdle
	w.mu.Unlock()
}

// ConfirmAndCommit delivers the current review text via the committer and
// ends the session. Valid only from Reviewing; always returns to Idle.
func (w *Widget) ConfirmAndCommit(ctx context.Context) {
	w.mu.Lock()
	if w.state != StateReviewing {
		w.mu.Unlock()
		return
	}
	text := w.review
	w.mu.Unlock()

	method, err := w.committer.Commit(text)
	switch {
	case err != nil:
		w.logger.Printf("recorder: commit: %v", err)
		w.notify("Could not commit text: " + err.Error())
	case method == CommitClipboard:
		w.notify("Copied to clipboard!")
	}

	w.mu.Lock()
	w.chunks = nil
	w.review = ""
	w.state = StateIdle
	w.mu.Unlock()
}

// Summarize sends the current review text through the relay's summarize
// operation. On success the summary replaces the review text; on failure
// the previous text is restored and the widget returns to Reviewing.
func (w *Widget) Summarize(ctx context.Context) {
	w.mu.Lock()
	if w.state != StateReviewing || strings.TrimSpace(w.review) == "" {
		w.mu.Unlock()
		return
	}
	prev := w.review
	w.state = StateProcessing
	w.mu.Unlock()

	summary, err := w.relay.Summarize(ctx, prev)

	w.mu.Lock()
	if w.state != StateProcessing {
		w.mu.Unlock()
		return
	}
	if err != nil {
		w.review = prev
		w.state = StateReviewing
		w.mu.Unlock()
		w.logger.Printf("recorder: summarize: %v", err)
		w.notify("Summarize failed")
		return
	}
	w.review = summary
	w.state = StateReviewing
	w.mu.Unlock()
}

// Destroy cancels any active session and retires the widget. Further
// operations are no-ops.
func (w *Widget) Destroy() {
	w.Cancel()
	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()
}

func (w *Widget) notify(msg string) {
	if w.notifier != nil {
		w.notifier.Notify(msg)
	}
}

func captureNotice(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Microphone access denied. Please allow microphone permission."
	case errors.Is(err, ErrNoDevice):
		return "No microphone was found."
	case errors.Is(err, ErrDeviceBusy):
		return "The microphone is in use by another application."
	default:
		return "Could not start recording."
	}
}
