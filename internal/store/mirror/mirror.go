// Package mirror implements the secondary copy of the history log: a flat
// JSON array of entries kept under a well-known file name. It is consulted
// only when the primary store cannot be read.
package mirror

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yiblet/freewrite/internal/store"
)

// Key is the well-known file name the mirror is stored under.
const Key = "writing-history.json"

// FileSystem is the subset of appfs.FS the mirror needs.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Remove(name string) error
}

// File is a store.Mirror persisted as JSON in a FileSystem.
type File struct {
	fsys FileSystem
	key  string
}

// NewFile creates a mirror stored under Key in fsys.
func NewFile(fsys FileSystem) *File {
	return &File{fsys: fsys, key: Key}
}

// Load reads the mirrored entries. A missing file is an empty mirror.
func (f *File) Load() ([]store.Entry, error) {
	data, err := f.fsys.ReadFile(f.key)
	if errors.Is(err, fs.ErrNotExist) {
		return []store.Entry{}, nil
	}
	if err != nil {
		return nil, store.Classify(store.ErrRead,
			goerr.Wrap(err, "failed to read mirror", goerr.V("key", f.key)))
	}

	var entries []store.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, store.Classify(store.ErrRead,
			goerr.Wrap(err, "failed to parse mirror", goerr.V("key", f.key)))
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	return entries, nil
}

// Save replaces the mirror with entries.
func (f *File) Save(entries []store.Entry) error {
	if entries == nil {
		entries = []store.Entry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return store.Classify(store.ErrWrite, goerr.Wrap(err, "failed to encode mirror"))
	}

	if err := f.fsys.WriteFile(f.key, data, 0644); err != nil {
		return store.Classify(store.ErrWrite,
			goerr.Wrap(err, "failed to write mirror", goerr.V("key", f.key)))
	}
	return nil
}

// Remove deletes the mirror file. A missing file is not an error.
func (f *File) Remove() error {
	err := f.fsys.Remove(f.key)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return store.Classify(store.ErrWrite,
			goerr.Wrap(err, "failed to remove mirror", goerr.V("key", f.key)))
	}
	return nil
}

// Memory is an in-memory store.Mirror for tests. Load and Save failures can
// be injected.
type Memory struct {
	mu        sync.Mutex
	entries   []store.Entry
	present   bool
	LoadErr   error
	SaveErr   error
	RemoveErr error
}

// NewMemory creates an empty in-memory mirror.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the mirrored entries.
func (m *Memory) Load() ([]store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadErr != nil {
		return nil, m.LoadErr
	}

	result := make([]store.Entry, len(m.entries))
	copy(result, m.entries)
	return result, nil
}

// Save replaces the mirrored entries.
func (m *Memory) Save(entries []store.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.entries = make([]store.Entry, len(entries))
	copy(m.entries, entries)
	m.present = true
	return nil
}

// Remove clears the mirror.
func (m *Memory) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveErr != nil {
		return m.RemoveErr
	}

	m.entries = nil
	m.present = false
	return nil
}

// Present reports whether the mirror currently exists.
func (m *Memory) Present() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present
}
