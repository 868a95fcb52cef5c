// Package store defines the storage interfaces for freewrite's history log.
// The primary store is a durable engine holding the capped entry log; the
// mirror is a flat serialized copy consulted only when the primary cannot
// be read.
package store

// EntryStore is the primary persistence engine for history entries.
type EntryStore interface {
	// Put inserts an entry keyed by its timestamp. An existing entry with the
	// same timestamp is overwritten. After the insert, entries are evicted in
	// ascending timestamp order until at most MaxEntries remain.
	Put(entry Entry) error

	// List returns all entries ordered newest first.
	List() ([]Entry, error)

	// Delete removes the entry with exactly this timestamp.
	// Deleting an absent timestamp is not an error.
	Delete(timestamp int64) error

	// Clear removes every entry.
	Clear() error

	// Count returns the number of stored entries.
	Count() (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Mirror is the secondary, best-effort copy of the entry list.
// It is replaced wholesale on every write and never participates in a
// transaction with the primary store.
type Mirror interface {
	// Load returns the mirrored entries. A missing mirror yields an empty
	// list and no error.
	Load() ([]Entry, error)

	// Save replaces the mirrored list.
	Save(entries []Entry) error

	// Remove deletes the mirror. Removing an absent mirror is not an error.
	Remove() error
}

// ConfigStore manages key-value settings kept alongside the primary store.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns an error if the key does not exist.
	Get(key string) (string, error)

	// Set stores a configuration value, replacing any existing one.
	Set(key, value string) error

	// List returns all configuration key-value pairs.
	List() (map[string]string, error)
}
