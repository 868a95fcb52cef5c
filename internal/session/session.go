// Package session holds the state of a writing session: the text buffer and
// the countdown timer. It is independent of rendering; the TUI drives it
// with one Tick per second and renders what it reports.
package session

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/yiblet/freewrite/internal/history"
	"github.com/yiblet/freewrite/internal/store"
)

// DefaultDuration is the countdown length of a new session.
const DefaultDuration = 15 * time.Minute

var placeholders = []string{
	"Start writing...",
	"Share your thoughts...",
	"Just say it...",
	"What's on your mind?",
	"Type your first thought...",
	"Begin your journey here...",
	"Let the words flow...",
	"Write freely...",
	"Capture your ideas...",
	"Express yourself...",
}

// Saver persists a finished snapshot. history.Manager implements it.
type Saver interface {
	Append(entry store.Entry) error
	Now() int64
}

// TickResult describes what a Tick did.
type TickResult int

const (
	// Idle means the timer was not running.
	Idle TickResult = iota
	// Ticked means one second elapsed and time remains.
	Ticked
	// Expired means the timer reached zero with nothing to save.
	Expired
	// AutoSaved means the timer reached zero and the text was saved.
	AutoSaved
	// AutoSaveFailed means the timer reached zero and saving failed.
	AutoSaveFailed
)

// Session is the editor and timer controller.
type Session struct {
	saver       Saver
	text        string
	duration    time.Duration
	remaining   time.Duration
	running     bool
	placeholder string
	lastErr     error
}

// New creates a session that saves through saver with the given countdown.
// A non-positive duration uses DefaultDuration.
func New(saver Saver, duration time.Duration) *Session {
	if duration <= 0 {
		duration = DefaultDuration
	}

	return &Session{
		saver:       saver,
		duration:    duration,
		remaining:   duration,
		placeholder: placeholders[rand.IntN(len(placeholders))],
	}
}

// Text returns the current buffer.
func (s *Session) Text() string {
	return s.text
}

// SetText replaces the buffer.
func (s *Session) SetText(text string) {
	s.text = text
}

// Placeholder returns the prompt shown while the buffer is empty.
func (s *Session) Placeholder() string {
	return s.placeholder
}

// Duration returns the full countdown length.
func (s *Session) Duration() time.Duration {
	return s.duration
}

// Remaining returns the time left on the countdown.
func (s *Session) Remaining() time.Duration {
	return s.remaining
}

// Running reports whether the countdown is active.
func (s *Session) Running() bool {
	return s.running
}

// LastError returns the error from the most recent failed autosave.
func (s *Session) LastError() error {
	return s.lastErr
}

// Toggle starts or pauses the countdown. An expired timer cannot be started
// again until Reset.
func (s *Session) Toggle() {
	if !s.running && s.remaining <= 0 {
		return
	}
	s.running = !s.running
}

// Reset stops the countdown and restores the full duration.
func (s *Session) Reset() {
	s.running = false
	s.remaining = s.duration
}

// Tick advances the countdown by one second. When it reaches zero the timer
// stops and non-blank text is saved once.
func (s *Session) Tick() TickResult {
	if !s.running {
		return Idle
	}

	s.remaining = max(s.remaining-time.Second, 0)
	if s.remaining > 0 {
		return Ticked
	}

	s.running = false
	if strings.TrimSpace(s.text) == "" {
		return Expired
	}

	if _, err := s.save(); err != nil {
		s.lastErr = err
		return AutoSaveFailed
	}
	return AutoSaved
}

// Save stores the buffer as a new history entry.
func (s *Session) Save() (store.Entry, error) {
	if strings.TrimSpace(s.text) == "" {
		return store.Entry{}, history.ErrEmptyText
	}
	return s.save()
}

func (s *Session) save() (store.Entry, error) {
	entry := store.Entry{Text: s.text, Timestamp: s.saver.Now()}
	if err := s.saver.Append(entry); err != nil {
		return store.Entry{}, err
	}
	return entry, nil
}

// NewSession starts over with an empty buffer and a reset timer. When the
// buffer has content nothing changes and true is returned; the caller should
// ask for confirmation and then call ConfirmNewSession.
func (s *Session) NewSession() (needsConfirm bool) {
	if strings.TrimSpace(s.text) != "" {
		return true
	}
	s.ConfirmNewSession()
	return false
}

// ConfirmNewSession discards the buffer and resets the timer.
func (s *Session) ConfirmNewSession() {
	s.text = ""
	s.lastErr = nil
	s.Reset()
}

// Load replaces the buffer with a history entry's text.
func (s *Session) Load(entry store.Entry) {
	s.text = entry.Text
}

// FormatRemaining renders the remaining time as m:ss.
func (s *Session) FormatRemaining() string {
	return FormatDuration(s.remaining)
}

// FormatDuration renders d as m:ss, truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	seconds := int(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
