// Package clipboard defines the clipboard abstraction used to copy writing
// sessions out of freewrite.
package clipboard

import (
	"fmt"
	"io"
	"strings"
)

// Clipboard is a text clipboard.
type Clipboard interface {
	Read() (io.ReadCloser, error)
	Write(r io.Reader) error
	IsSupported() bool
}

// WriteString copies text to the clipboard and returns the number of bytes written
func WriteString(cb Clipboard, text string) (int, error) {
	if !cb.IsSupported() {
		return 0, fmt.Errorf("clipboard is not supported on this system")
	}
	if err := cb.Write(strings.NewReader(text)); err != nil {
		return 0, fmt.Errorf("failed to write clipboard: %w", err)
	}
	return len(text), nil
}

// ReadString reads the full clipboard contents as text
func ReadString(cb Clipboard) (string, error) {
	rc, err := cb.Read()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return string(data), nil
}
