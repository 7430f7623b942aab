package eventlog

import (
	"encoding/json"
	"log"
)

// EventType represents a pipeline event emitted by the relay.
type EventType string

const (
	EventUploadReceived     EventType = "upload_received"
	EventSTTCompleted       EventType = "stt_completed"
	EventCleanupCompleted   EventType = "cleanup_completed"
	EventSummarizeRequested EventType = "summarize_requested"
	EventSummarizeCompleted EventType = "summarize_completed"
	EventRelayError         EventType = "relay_error"
	EventSpoolDeleted       EventType = "spool_deleted"
)

// Logger writes structured pipeline events as JSON lines through the process
// logger. There is no persistent sink: requests are stateless and history is
// out of scope.
type Logger struct {
	logger *log.Logger
}

// New creates a new event logger.
func New(logger *log.Logger) *Logger {
	return &Logger{logger: logger}
}

// Log emits one event. Nil loggers and empty request IDs are silently
// skipped so call sites never need to guard.
func (l *Logger) Log(requestID string, eventType EventType, data map[string]any) {
	if l == nil || l.logger == nil || requestID == "" {
		return
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		dataJSON = []byte("{}")
	}

	l.logger.Printf("event %s request=%s data=%s", eventType, requestID, dataJSON)
}
