// Package mockboard provides an in-memory clipboard for tests.
package mockboard

import (
	"bytes"
	"io"
	"sync"
)

// MockClipboard is an in-memory clipboard.Clipboard
type MockClipboard struct {
	mu       sync.Mutex
	data     []byte
	writeErr error
	writes   int
}

// New creates an empty MockClipboard
func New() *MockClipboard {
	return &MockClipboard{}
}

// Read returns the stored data
func (m *MockClipboard) Read() (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(bytes.Clone(m.data))), nil
}

// Write stores everything read from r, or fails with the injected error
func (m *MockClipboard) Write(r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.data = data
	m.writes++
	return nil
}

// IsSupported always returns true
func (m *MockClipboard) IsSupported() bool {
	return true
}

// FailWrites makes every later Write return err. A nil err heals the clipboard.
func (m *MockClipboard) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// SetData sets the clipboard contents directly
func (m *MockClipboard) SetData(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}

// GetData returns the current clipboard contents
func (m *MockClipboard) GetData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Writes returns how many successful writes happened
func (m *MockClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
