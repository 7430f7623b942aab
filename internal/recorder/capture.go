package recorder

import (
	"context"
	"errors"
)

// Capture acquisition failures. Each maps to a distinct user-facing notice.
var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrNoDevice         = errors.New("no audio input device")
	ErrDeviceBusy       = errors.New("audio input device busy")
)

// CaptureDevice acquires a live microphone stream. Implementations must
// return one of the sentinel errors above when acquisition fails for a
// reason the user can act on.
type CaptureDevice interface {
	Open(ctx context.Context) (CaptureStream, error)
}

// CaptureStream delivers audio fragments from an open device. Frames are
// 16-bit little-endian PCM. The channel closes when the stream ends; Close
// stops capture, releases the hardware device, and must be safe to call
// more than once.
type CaptureStream interface {
	Frames() <-chan []byte
	Close() error
}
