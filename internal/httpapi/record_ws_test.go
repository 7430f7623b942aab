package httpapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voiyce/voiyce/internal/llm"
	"github.com/voiyce/voiyce/internal/stt"
)

func dialRecordWS(t *testing.T, r *Router) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(r.handleRecordWS))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads updates until one with the wanted event arrives, skipping
// interleaved level events and the like.
func readUntil(t *testing.T, conn *websocket.Conn, event string) recordUpdate {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for {
		var update recordUpdate
		if err := conn.ReadJSON(&update); err != nil {
			t.Fatalf("waiting for %q event: %v", event, err)
		}
		if update.Event == event {
			return update
		}
		if time.Now().After(deadline) {
			t.Fatalf("no %q event before deadline", event)
		}
	}
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg recordMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %q: %v", msg.Event, err)
	}
}

func TestRecordWS_DictationFlow(t *testing.T) {
	sttMock := &stt.Mock{
		TranscribeFunc: func(ctx context.Context, req stt.Request) (string, error) {
			return "hello there", nil
		},
	}
	llmMock := &llm.Mock{
		RefineFunc: func(ctx context.Context, raw string) (string, error) {
			return "Hello there.", nil
		},
	}
	r := newTestRouter(t, sttMock, llmMock)
	conn := dialRecordWS(t, r)

	sendMsg(t, conn, recordMessage{Event: "start"})
	if update := readUntil(t, conn, "state"); update.State != "recording" {
		t.Fatalf("state = %q, want recording", update.State)
	}

	frame := base64.StdEncoding.EncodeToString([]byte{0x00, 0x40, 0x00, 0x20})
	sendMsg(t, conn, recordMessage{Event: "media", Payload: frame})

	if update := readUntil(t, conn, "level"); update.Level <= 0 {
		t.Errorf("level = %v, want > 0 for a non-silent frame", update.Level)
	}

	sendMsg(t, conn, recordMessage{Event: "stop"})
	update := readUntil(t, conn, "state")
	if update.State != "reviewing" {
		t.Fatalf("state = %q, want reviewing", update.State)
	}
	if update.Text != "Hello there." {
		t.Errorf("text = %q, want the cleaned transcript", update.Text)
	}

	sendMsg(t, conn, recordMessage{Event: "confirm"})
	if commit := readUntil(t, conn, "commit"); commit.Text != "Hello there." {
		t.Errorf("commit text = %q", commit.Text)
	}
	if update := readUntil(t, conn, "state"); update.State != "idle" {
		t.Errorf("state = %q, want idle after confirm", update.State)
	}
}

func TestRecordWS_EditThenSummarize(t *testing.T) {
	llmMock := &llm.Mock{
		RefineFunc: func(ctx context.Context, raw string) (string, error) {
			return "Original text.", nil
		},
		SummarizeFunc: func(ctx context.Context, text string) (string, error) {
			if text != "Edited text." {
				t.Errorf("summarize input = %q, want the edited text", text)
			}
			return "I edited things.", nil
		},
	}
	r := newTestRouter(t, &stt.Mock{}, llmMock)
	conn := dialRecordWS(t, r)

	sendMsg(t, conn, recordMessage{Event: "start"})
	readUntil(t, conn, "state")

	frame := base64.StdEncoding.EncodeToString([]byte{0x00, 0x10})
	sendMsg(t, conn, recordMessage{Event: "media", Payload: frame})
	readUntil(t, conn, "level")

	sendMsg(t, conn, recordMessage{Event: "stop"})
	if update := readUntil(t, conn, "state"); update.State != "reviewing" {
		t.Fatalf("state = %q, want reviewing", update.State)
	}

	sendMsg(t, conn, recordMessage{Event: "edit", Text: "Edited text."})
	sendMsg(t, conn, recordMessage{Event: "summarize"})

	update := readUntil(t, conn, "state")
	if update.State != "reviewing" {
		t.Errorf("state = %q, want reviewing after summarize", update.State)
	}
	if update.Text != "I edited things." {
		t.Errorf("text = %q, want the summary", update.Text)
	}
}

func TestRecordWS_CancelDiscardsEverything(t *testing.T) {
	sttMock := &stt.Mock{}
	r := newTestRouter(t, sttMock, &llm.Mock{})
	conn := dialRecordWS(t, r)

	sendMsg(t, conn, recordMessage{Event: "start"})
	readUntil(t, conn, "state")

	frame := base64.StdEncoding.EncodeToString([]byte{0x00, 0x40})
	sendMsg(t, conn, recordMessage{Event: "media", Payload: frame})
	readUntil(t, conn, "level")

	sendMsg(t, conn, recordMessage{Event: "cancel"})
	update := readUntil(t, conn, "state")
	if update.State != "idle" {
		t.Errorf("state = %q, want idle after cancel", update.State)
	}
	if update.Text != "" {
		t.Errorf("text = %q, want empty after cancel", update.Text)
	}
	if len(sttMock.Calls) != 0 {
		t.Error("cancel must not send anything to the relay")
	}
}

func TestRecordWS_StopWithoutAudio(t *testing.T) {
	sttMock := &stt.Mock{}
	r := newTestRouter(t, sttMock, &llm.Mock{})
	conn := dialRecordWS(t, r)

	sendMsg(t, conn, recordMessage{Event: "start"})
	readUntil(t, conn, "state")

	sendMsg(t, conn, recordMessage{Event: "stop"})
	if notice := readUntil(t, conn, "notice"); notice.Notice != "Nothing recorded." {
		t.Errorf("notice = %q", notice.Notice)
	}
	if update := readUntil(t, conn, "state"); update.State != "idle" {
		t.Errorf("state = %q, want idle", update.State)
	}
	if len(sttMock.Calls) != 0 {
		t.Error("no request should go out with zero buffered audio")
	}
}

func TestRecordWS_RejectsDuringDrain(t *testing.T) {
	r := newTestRouter(t, &stt.Mock{}, &llm.Mock{})
	r.requests.StartDraining()

	srv := httptest.NewServer(http.HandlerFunc(r.handleRecordWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial should fail while draining")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected a 503 handshake response, got %+v", resp)
	}
}

func TestWSCapture_SingleStream(t *testing.T) {
	c := &wsCapture{}

	s1, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := c.Open(context.Background()); err == nil {
		t.Error("second Open should fail while a stream is active")
	}

	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Errorf("Close must be idempotent, got %v", err)
	}

	s2, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("open after close: %v", err)
	}
	_ = s2.Close()
}

func TestWSCapture_PushAfterCloseIsDropped(t *testing.T) {
	c := &wsCapture{}
	s, err := c.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	c.push([]byte{1, 2})
	if frame := <-s.Frames(); len(frame) != 2 {
		t.Errorf("frame = %v", frame)
	}

	_ = s.Close()
	c.push([]byte{3, 4}) // must not panic

	if _, ok := <-s.Frames(); ok {
		t.Error("frames channel should be closed")
	}
}
