package recorder

import "github.com/atotto/clipboard"

// SystemClipboard implements Clipboard using the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}
