// Package memstore provides an in-memory implementation of store.EntryStore.
// It is used by unit tests and the demo command and does not persist data.
// Failures can be injected per operation to exercise fallback paths.
package memstore

import (
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yiblet/freewrite/internal/store"
)

// Op names an EntryStore operation for fault injection.
type Op string

const (
	OpPut    Op = "put"
	OpList   Op = "list"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
	OpCount  Op = "count"
)

// MemoryStore is an in-memory implementation of store.EntryStore.
// It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]string
	faults  map[Op]error
}

// NewMemoryStore creates a new empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]string),
		faults:  make(map[Op]error),
	}
}

// FailOn makes every call of op return err until Heal is called.
// A nil err uses a generic store.ErrRead or store.ErrWrite.
func (m *MemoryStore) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		kind := store.ErrWrite
		if op == OpList || op == OpCount {
			kind = store.ErrRead
		}
		err = store.Classify(kind, goerr.New("injected failure", goerr.V("op", string(op))))
	}
	m.faults[op] = err
}

// Heal removes all injected failures.
func (m *MemoryStore) Heal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = make(map[Op]error)
}

// Put stores the entry and evicts the oldest beyond store.MaxEntries.
func (m *MemoryStore) Put(entry store.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.faults[OpPut]; err != nil {
		return err
	}

	m.entries[entry.Timestamp] = entry.Text

	if len(m.entries) > store.MaxEntries {
		timestamps := m.sortedTimestamps()
		for _, ts := range timestamps[store.MaxEntries:] {
			delete(m.entries, ts)
		}
	}

	return nil
}

// List returns entries sorted by timestamp descending.
func (m *MemoryStore) List() ([]store.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.faults[OpList]; err != nil {
		return nil, err
	}

	timestamps := m.sortedTimestamps()
	entries := make([]store.Entry, len(timestamps))
	for i, ts := range timestamps {
		entries[i] = store.Entry{Text: m.entries[ts], Timestamp: ts}
	}
	return entries, nil
}

// Delete removes an entry; absent timestamps are ignored.
func (m *MemoryStore) Delete(timestamp int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.faults[OpDelete]; err != nil {
		return err
	}

	delete(m.entries, timestamp)
	return nil
}

// Clear removes all entries.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.faults[OpClear]; err != nil {
		return err
	}

	m.entries = make(map[int64]string)
	return nil
}

// Count returns the number of entries.
func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.faults[OpCount]; err != nil {
		return 0, err
	}

	return len(m.entries), nil
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

// sortedTimestamps returns timestamps newest first. Caller holds the lock.
func (m *MemoryStore) sortedTimestamps() []int64 {
	timestamps := make([]int64, 0, len(m.entries))
	for ts := range m.entries {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i] > timestamps[j]
	})
	return timestamps
}
