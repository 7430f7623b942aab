// Package upload spools incoming audio payloads to disk for the duration of
// one relay request. Files are named like multer does (timestamp-original)
// and must be removed by the caller on every exit path.
package upload

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Spool owns a directory of short-lived audio files.
type Spool struct {
	dir    string
	logger *log.Logger
}

// NewSpool creates the spool directory if needed.
func NewSpool(dir string, logger *log.Logger) (*Spool, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{dir: dir, logger: logger}, nil
}

// Dir returns the spool directory path.
func (s *Spool) Dir() string { return s.dir }

// Save writes the payload to a new file and returns its path. The original
// name is sanitized to its base name so clients cannot escape the directory.
func (s *Spool) Save(r io.Reader, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeName(originalName))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close spool file: %w", err)
	}
	return path, nil
}

// Remove deletes a spooled file. Missing files are not an error; anything
// else is logged because a leaking spool fills the disk silently.
func (s *Spool) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		if s.logger != nil {
			s.logger.Printf("spool: failed to delete %s: %v", path, err)
		}
	}
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "audio"
	}
	return name
}
