// Package history implements the capped writing history log on top of a
// primary store and a best-effort mirror.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rs/zerolog"
	"github.com/yiblet/freewrite/internal/store"
)

// ErrEmptyText is returned when saving text with no non-whitespace content.
var ErrEmptyText = goerr.New("cannot save empty text")

// Manager is the history store used by the editor and the CLI.
//
// Writes go to the primary store first and are then copied to the mirror.
// The two are updated independently with no rollback, so a failure between
// them can leave them diverged; the mirror is only read when the primary
// cannot be.
type Manager struct {
	primary store.EntryStore
	mirror  store.Mirror
	logger  zerolog.Logger
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger storage failures are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used by Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a history manager over primary and mirror.
func NewManager(primary store.EntryStore, mirror store.Mirror, opts ...Option) *Manager {
	m := &Manager{
		primary: primary,
		mirror:  mirror,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the timestamp a new entry created at this moment would get.
func (m *Manager) Now() int64 {
	return m.now().UnixMilli()
}

// Append stores a new entry.
//
// The primary store evicts the oldest entries beyond store.MaxEntries. The
// mirror is updated whether or not the primary write succeeded, so a later
// read fallback still sees the entry. Only the primary outcome is returned.
func (m *Manager) Append(entry store.Entry) error {
	if entry.IsBlank() {
		return ErrEmptyText
	}
	if entry.Timestamp <= 0 {
		return goerr.New("invalid entry timestamp", goerr.V("timestamp", entry.Timestamp))
	}

	primaryErr := m.primary.Put(entry)
	if primaryErr != nil {
		m.logger.Error().Err(primaryErr).Int64("timestamp", entry.Timestamp).Msg("failed to save entry")
	}

	m.updateMirror(func(entries []store.Entry) []store.Entry {
		return append([]store.Entry{entry}, entries...)
	})

	if primaryErr != nil {
		return fmt.Errorf("failed to save entry: %w", primaryErr)
	}

	m.logger.Debug().Int64("timestamp", entry.Timestamp).Int("bytes", len(entry.Text)).Msg("entry saved")
	return nil
}

// List returns all entries newest first.
//
// If the primary store cannot be read, the mirror's contents are returned
// instead with no error. Only when both fail is an error returned, together
// with an empty list.
func (m *Manager) List() ([]store.Entry, error) {
	entries, primaryErr := m.primary.List()
	if primaryErr == nil {
		if entries == nil {
			entries = []store.Entry{}
		}
		return entries, nil
	}

	m.logger.Warn().Err(primaryErr).Msg("failed to load history, using mirror")

	mirrored, mirrorErr := m.mirror.Load()
	if mirrorErr != nil {
		m.logger.Error().Err(mirrorErr).Msg("failed to load history mirror")
		return []store.Entry{}, fmt.Errorf("failed to load history: %w", errors.Join(primaryErr, mirrorErr))
	}

	return store.Normalize(mirrored), nil
}

// Get returns the entry at index in newest-first order.
func (m *Manager) Get(index int) (store.Entry, error) {
	entries, err := m.List()
	if err != nil {
		return store.Entry{}, err
	}

	if index < 0 || index >= len(entries) {
		if len(entries) == 0 {
			return store.Entry{}, fmt.Errorf("index %d out of range (history is empty)", index)
		}
		return store.Entry{}, fmt.Errorf("index %d out of range (0-%d)", index, len(entries)-1)
	}

	return entries[index], nil
}

// Delete removes the entry with exactly this timestamp. An absent timestamp
// is a no-op. The mirror is only updated after the primary delete succeeds.
func (m *Manager) Delete(timestamp int64) error {
	if err := m.primary.Delete(timestamp); err != nil {
		m.logger.Error().Err(err).Int64("timestamp", timestamp).Msg("failed to delete entry")
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	m.updateMirror(func(entries []store.Entry) []store.Entry {
		kept := entries[:0]
		for _, e := range entries {
			if e.Timestamp != timestamp {
				kept = append(kept, e)
			}
		}
		return kept
	})

	return nil
}

// ClearAll removes every entry from both the primary store and the mirror.
// Both removals are attempted; the error reports each one that failed.
func (m *Manager) ClearAll() error {
	var errs []error

	if err := m.primary.Clear(); err != nil {
		m.logger.Error().Err(err).Msg("failed to clear history")
		errs = append(errs, err)
	}

	if err := m.mirror.Remove(); err != nil {
		m.logger.Error().Err(err).Msg("failed to clear history mirror")
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to clear history: %w", errors.Join(errs...))
	}
	return nil
}

// Size returns the number of entries in the primary store.
func (m *Manager) Size() (int, error) {
	return m.primary.Count()
}

// Close releases store resources.
func (m *Manager) Close() error {
	return m.primary.Close()
}

// updateMirror rewrites the mirror through fn. Failures are logged only.
func (m *Manager) updateMirror(fn func([]store.Entry) []store.Entry) {
	entries, err := m.mirror.Load()
	if err != nil {
		// An unreadable mirror is rebuilt from scratch
		m.logger.Warn().Err(err).Msg("failed to load history mirror, rewriting it")
		entries = []store.Entry{}
	}

	if err := m.mirror.Save(store.Normalize(fn(entries))); err != nil {
		m.logger.Warn().Err(err).Msg("failed to update history mirror")
	}
}
