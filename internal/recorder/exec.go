package recorder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"sync"
)

// ExecDevice captures audio by running an external recorder command that
// writes raw 16-bit little-endian PCM to stdout (arecord, sox, ffmpeg).
type ExecDevice struct {
	Command    string   // e.g., "arecord"
	Args       []string // e.g., ["-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "raw"]
	FrameBytes int      // bytes per delivered frame, default 3200 (100ms at 16kHz mono)
	Logger     *log.Logger
}

// DefaultALSAArgs capture 16kHz mono raw PCM via arecord.
var DefaultALSAArgs = []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "raw"}

func (d *ExecDevice) Open(ctx context.Context) (CaptureStream, error) {
	if d.Command == "" {
		return nil, fmt.Errorf("no recorder command configured: %w", ErrNoDevice)
	}

	cmd := exec.CommandContext(ctx, d.Command, d.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("recorder command %q not found: %w", d.Command, ErrNoDevice)
		}
		return nil, fmt.Errorf("start %q: %w", d.Command, err)
	}

	frameBytes := d.FrameBytes
	if frameBytes <= 0 {
		frameBytes = 3200
	}

	s := &execStream{
		cmd:        cmd,
		frames:     make(chan []byte, 16),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}

	go func() {
		defer close(s.readerDone)
		defer close(s.frames)
		buf := make([]byte, frameBytes)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				frame := make([]byte, n)
				copy(frame, buf[:n])
				select {
				case s.frames <- frame:
				case <-s.done:
					return
				}
			}
			if err != nil {
				if d.Logger != nil && !errors.Is(err, ctx.Err()) {
					d.Logger.Printf("capture: read ended: %v", err)
				}
				return
			}
		}
	}()

	return s, nil
}

type execStream struct {
	cmd        *exec.Cmd
	frames     chan []byte
	done       chan struct{}
	readerDone chan struct{}
	closeOnce  sync.Once
}

func (s *execStream) Frames() <-chan []byte { return s.frames }

// Close kills the recorder process, which ends the read loop and closes the
// frames channel. The hardware device is free once the process is gone.
func (s *execStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.readerDone // stdout reads must finish before Wait closes the pipe
		err = s.cmd.Wait()
	})
	return err
}
