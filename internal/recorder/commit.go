package recorder

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// CommitMethod reports how reviewed text was delivered.
type CommitMethod int

const (
	CommitNone CommitMethod = iota
	CommitInserted
	CommitClipboard
)

// InsertTarget is an editable element that accepts text insertion - an
// input, textarea or content-editable region on the page.
type InsertTarget interface {
	InsertText(text string) error
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// Committer delivers committed text: into the element that last held input
// focus when one is available, otherwise onto the clipboard. An insertion
// failure falls back to the clipboard rather than surfacing to the user.
type Committer struct {
	mu        sync.Mutex
	target    InsertTarget
	clipboard Clipboard
	logger    *log.Logger
}

// NewCommitter creates a committer with the given clipboard fallback.
func NewCommitter(clipboard Clipboard, logger *log.Logger) *Committer {
	return &Committer{clipboard: clipboard, logger: logger}
}

// SetFocusTarget records the element that currently holds input focus.
// Pass nil when focus moves to something that cannot take text.
func (c *Committer) SetFocusTarget(t InsertTarget) {
	c.mu.Lock()
	c.target = t
	c.mu.Unlock()
}

// Commit delivers the text and reports which path succeeded.
func (c *Committer) Commit(text string) (CommitMethod, error) {
	c.mu.Lock()
	target := c.target
	c.mu.Unlock()

	if target != nil {
		if err := target.InsertText(text); err == nil {
			return CommitInserted, nil
		} else if c.logger != nil {
			c.logger.Printf("commit: insertion failed, falling back to clipboard: %v", err)
		}
	}

	if c.clipboard == nil {
		return CommitNone, errors.New("no insertion target and no clipboard")
	}
	if err := c.clipboard.WriteText(text); err != nil {
		return CommitNone, fmt.Errorf("clipboard write: %w", err)
	}
	return CommitClipboard, nil
}
