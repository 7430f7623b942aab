package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/voiyce/voiyce/internal/recorder"
	"github.com/voiyce/voiyce/internal/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// recordMessage is an inbound control or media frame from the widget host.
type recordMessage struct {
	Event   string `json:"event"`
	Text    string `json:"text,omitempty"`
	Payload string `json:"payload,omitempty"` // base64 16-bit LE PCM
}

// recordUpdate is an outbound event to the widget host.
type recordUpdate struct {
	Event  string  `json:"event"`
	State  string  `json:"state,omitempty"`
	Level  float64 `json:"level,omitempty"`
	Text   string  `json:"text,omitempty"`
	Notice string  `json:"notice,omitempty"`
}

// recordSession hosts one recorder widget behind a websocket. The browser
// side streams microphone frames up and receives level, state, and commit
// events back. One connection is one widget; nothing is shared across
// connections.
type recordSession struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	widget  *recorder.Widget
	capture *wsCapture
	logger  *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func (r *Router) handleRecordWS(w http.ResponseWriter, req *http.Request) {
	if !r.requests.Add() {
		http.Error(w, "draining", http.StatusServiceUnavailable)
		return
	}
	defer r.requests.Done()

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Printf("record_ws: upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(req.Context())

	session := &recordSession{
		conn:    conn,
		capture: &wsCapture{},
		logger:  r.logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	committer := recorder.NewCommitter(nil, r.logger)
	committer.SetFocusTarget(session)

	session.widget = recorder.New(recorder.Config{
		Device:    session.capture,
		Relay:     serviceRelay{service: r.service},
		Renderer:  session,
		Notifier:  session,
		Committer: committer,
		MIMEType:  "audio/pcm",
		Logger:    r.logger,
	})

	r.logger.Printf("record_ws: session established")
	session.run()
}

func (s *recordSession) run() {
	defer s.cleanup()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("record_ws: connection closed")
			} else {
				s.logger.Printf("record_ws: read error: %v", err)
			}
			return
		}

		var rm recordMessage
		if err := json.Unmarshal(msg, &rm); err != nil {
			s.logger.Printf("record_ws: failed to parse message: %v", err)
			continue
		}

		switch rm.Event {
		case "start":
			s.widget.ToggleCapture(s.ctx)
			s.sendState()

		case "stop":
			// Submitting blocks on the relay; keep reading frames meanwhile.
			go func() {
				s.widget.StopAndSubmit(s.ctx)
				s.sendState()
			}()

		case "media":
			frame, err := base64.StdEncoding.DecodeString(rm.Payload)
			if err != nil {
				s.logger.Printf("record_ws: failed to decode audio: %v", err)
				continue
			}
			s.capture.push(frame)

		case "edit":
			s.widget.SetReviewText(rm.Text)

		case "summarize":
			go func() {
				s.widget.Summarize(s.ctx)
				s.sendState()
			}()

		case "confirm":
			s.widget.ConfirmAndCommit(s.ctx)
			s.sendState()

		case "cancel":
			s.widget.Cancel()
			s.sendState()
		}
	}
}

func (s *recordSession) send(update recordUpdate) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn.WriteJSON(update)
}

// sendState mirrors the widget's state and review text to the host.
func (s *recordSession) sendState() {
	update := recordUpdate{
		Event: "state",
		State: s.widget.State().String(),
		Text:  s.widget.ReviewText(),
	}
	if err := s.send(update); err != nil {
		s.logger.Printf("record_ws: failed to send state: %v", err)
	}
}

// RenderLevel implements recorder.LevelRenderer over the socket.
func (s *recordSession) RenderLevel(level float64) error {
	return s.send(recordUpdate{Event: "level", Level: level})
}

// Notify implements recorder.Notifier: toasts are rendered by the host.
func (s *recordSession) Notify(msg string) {
	if err := s.send(recordUpdate{Event: "notice", Notice: msg}); err != nil {
		s.logger.Printf("record_ws: failed to send notice: %v", err)
	}
}

// InsertText implements recorder.InsertTarget: the host inserts the committed
// text into whatever element holds focus.
func (s *recordSession) InsertText(text string) error {
	return s.send(recordUpdate{Event: "commit", Text: text})
}

func (s *recordSession) cleanup() {
	s.cancel()
	s.widget.Destroy()

	s.connMu.Lock()
	_ = s.conn.Close()
	s.connMu.Unlock()

	s.logger.Printf("record_ws: session cleaned up")
}

// serviceRelay adapts the in-process relay service to the widget's Relay
// interface, skipping the HTTP hop the extension client takes.
type serviceRelay struct {
	service *relay.Service
}

func (r serviceRelay) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return r.service.Transcribe(ctx, bytes.NewReader(audio), "recording.pcm", mimeType)
}

func (r serviceRelay) Summarize(ctx context.Context, text string) (string, error) {
	return r.service.Summarize(ctx, text)
}

// wsCapture is a capture device fed by decoded websocket media frames. Only
// one stream may be open at a time.
type wsCapture struct {
	mu     sync.Mutex
	stream *wsStream
}

func (c *wsCapture) Open(ctx context.Context) (recorder.CaptureStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		return nil, recorder.ErrDeviceBusy
	}
	s := &wsStream{
		frames: make(chan []byte, 64),
		done:   make(chan struct{}),
		release: func() {
			c.mu.Lock()
			c.stream = nil
			c.mu.Unlock()
		},
	}
	c.stream = s
	return s, nil
}

// push forwards a frame to the open stream, dropping it when no stream is
// active or the buffer is full. Media frames may race the stop control
// message; late frames are not an error.
func (c *wsCapture) push(frame []byte) {
	c.mu.Lock()
	s := c.stream
	c.mu.Unlock()
	if s == nil {
		return
	}
	s.push(frame)
}

type wsStream struct {
	mu        sync.Mutex
	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
	release   func()
}

func (s *wsStream) Frames() <-chan []byte { return s.frames }

func (s *wsStream) push(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.frames <- frame:
	default:
		// Buffer full: drop rather than stall the read loop.
	}
}

func (s *wsStream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		close(s.done)
		close(s.frames)
		s.mu.Unlock()
		s.release()
	})
	return nil
}
