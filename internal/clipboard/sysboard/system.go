// Package sysboard implements the system clipboard.
//
// It prefers the native clipboard through golang.design/x/clipboard. When the
// native backend cannot be initialized (no display, cgo disabled) it falls
// back to pbcopy/pbpaste on macOS and xclip or xsel on Linux.
package sysboard

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	xclipboard "golang.design/x/clipboard"
)

var (
	nativeOnce sync.Once
	nativeErr  error
)

func initNative() error {
	nativeOnce.Do(func() {
		nativeErr = xclipboard.Init()
	})
	return nativeErr
}

// SystemClipboard implements clipboard.Clipboard for the host system
type SystemClipboard struct {
	// Native disables the golang.design backend when false
	Native bool
}

// New creates a SystemClipboard that tries the native backend first
func New() *SystemClipboard {
	return &SystemClipboard{Native: true}
}

func (s *SystemClipboard) useNative() bool {
	return s.Native && initNative() == nil
}

// IsSupported reports whether any clipboard backend is available
func (s *SystemClipboard) IsSupported() bool {
	if s.useNative() {
		return true
	}

	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("pbcopy"); err != nil {
			return false
		}
		if _, err := exec.LookPath("pbpaste"); err != nil {
			return false
		}
		return true
	case "linux":
		if _, err := exec.LookPath("xclip"); err == nil {
			return true
		}
		if _, err := exec.LookPath("xsel"); err == nil {
			return true
		}
		return false
	default:
		return false
	}
}

// Read returns the clipboard text
func (s *SystemClipboard) Read() (io.ReadCloser, error) {
	if s.useNative() {
		return io.NopCloser(bytes.NewReader(xclipboard.Read(xclipboard.FmtText))), nil
	}

	switch runtime.GOOS {
	case "darwin":
		return readWithCommand("pbpaste")
	case "linux":
		return readLinux()
	default:
		return nil, fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}
}

// Write replaces the clipboard text with everything read from r
func (s *SystemClipboard) Write(r io.Reader) error {
	if s.useNative() {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read clipboard input: %w", err)
		}
		xclipboard.Write(xclipboard.FmtText, data)
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		if err := writeWithCommand(r, "pbcopy"); err != nil {
			return fmt.Errorf("failed to run pbcopy: %w", err)
		}
		return nil
	case "linux":
		return writeLinux(r)
	default:
		return fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}
}

// cmdReadCloser waits on the command once its stdout is closed
type cmdReadCloser struct {
	stdout io.ReadCloser
	cmd    *exec.Cmd
}

func (c *cmdReadCloser) Read(p []byte) (n int, err error) {
	return c.stdout.Read(p)
}

func (c *cmdReadCloser) Close() error {
	if err := c.stdout.Close(); err != nil {
		c.cmd.Wait()
		return err
	}

	c.cmd.Process.Signal(os.Interrupt)
	return c.cmd.Wait()
}

func readLinux() (io.ReadCloser, error) {
	if reader, err := readWithCommand("xclip", "-selection", "clipboard", "-o"); err == nil {
		return reader, nil
	}

	reader, err := readWithCommand("xsel", "--clipboard", "--output")
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard (tried xclip and xsel): %w", err)
	}
	return reader, nil
}

func writeLinux(r io.Reader) error {
	// Buffer the input so xsel still sees it if xclip consumed part of r
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read clipboard input: %w", err)
	}

	if err := writeWithCommand(bytes.NewReader(data), "xclip", "-selection", "clipboard"); err == nil {
		return nil
	}

	if err := writeWithCommand(bytes.NewReader(data), "xsel", "--clipboard", "--input"); err != nil {
		return fmt.Errorf("failed to write clipboard (tried xclip and xsel): %w", err)
	}
	return nil
}

func readWithCommand(name string, args ...string) (io.ReadCloser, error) {
	cmd := exec.Command(name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	return &cmdReadCloser{stdout: stdout, cmd: cmd}, nil
}

func writeWithCommand(r io.Reader, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = r
	return cmd.Run()
}
