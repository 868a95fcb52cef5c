package dbstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/yiblet/freewrite/internal/store"
)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

func timestampsOf(entries []store.Entry) []int64 {
	result := make([]int64, len(entries))
	for i, e := range entries {
		result[i] = e.Timestamp
	}
	return result
}

// TestNewSQLiteStore tests database initialization
func TestNewSQLiteStore(t *testing.T) {
	st := setupTestDB(t)

	if _, err := os.Stat(st.Path()); err != nil {
		t.Fatalf("expected database file to exist: %v", err)
	}

	version, err := st.Config().Get("db_version")
	if err != nil {
		t.Fatalf("failed to get db_version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("expected db_version=%s, got %s", SchemaVersion, version)
	}
}

// TestNewSQLiteStore_Unavailable tests that an unopenable path is reported
func TestNewSQLiteStore_Unavailable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "dir", "test.db")

	_, err := NewSQLiteStore(dbPath)
	if err == nil {
		t.Fatal("expected error for unopenable database path")
	}
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

// TestSQLiteStore_PutAndList tests that entries come back newest first
func TestSQLiteStore_PutAndList(t *testing.T) {
	st := setupTestDB(t)

	for _, ts := range []int64{300, 100, 200} {
		if err := st.Put(store.Entry{Text: fmt.Sprintf("entry %d", ts), Timestamp: ts}); err != nil {
			t.Fatalf("Put(%d) error = %v", ts, err)
		}
	}

	entries, err := st.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []int64{300, 200, 100}
	got := timestampsOf(entries)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected timestamps %v, got %v", want, got)
	}
	if entries[0].Text != "entry 300" {
		t.Errorf("expected text 'entry 300', got %q", entries[0].Text)
	}
}

// TestSQLiteStore_Eviction tests the capped retention policy
func TestSQLiteStore_Eviction(t *testing.T) {
	st := setupTestDB(t)

	for ts := int64(1); ts <= 11; ts++ {
		if err := st.Put(store.Entry{Text: "text", Timestamp: ts}); err != nil {
			t.Fatalf("Put(%d) error = %v", ts, err)
		}

		count, err := st.Count()
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count > store.MaxEntries {
			t.Fatalf("after Put(%d) expected at most %d entries, got %d", ts, store.MaxEntries, count)
		}
	}

	entries, err := st.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []int64{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	if got := timestampsOf(entries); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected timestamps %v, got %v", want, got)
	}
}

// TestSQLiteStore_EvictionOfOlderInsert tests that an insert older than
// everything in a full log is itself evicted
func TestSQLiteStore_EvictionOfOlderInsert(t *testing.T) {
	st := setupTestDB(t)

	for ts := int64(10); ts <= 19; ts++ {
		if err := st.Put(store.Entry{Text: "text", Timestamp: ts}); err != nil {
			t.Fatalf("Put(%d) error = %v", ts, err)
		}
	}

	if err := st.Put(store.Entry{Text: "old", Timestamp: 1}); err != nil {
		t.Fatalf("Put(1) error = %v", err)
	}

	entries, err := st.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != store.MaxEntries {
		t.Fatalf("expected %d entries, got %d", store.MaxEntries, len(entries))
	}
	if entries[len(entries)-1].Timestamp != 10 {
		t.Errorf("expected oldest surviving timestamp 10, got %d", entries[len(entries)-1].Timestamp)
	}
}

// TestSQLiteStore_PutOverwrite tests last-write-wins on timestamp collision
func TestSQLiteStore_PutOverwrite(t *testing.T) {
	st := setupTestDB(t)

	if err := st.Put(store.Entry{Text: "first", Timestamp: 42}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := st.Put(store.Entry{Text: "second", Timestamp: 42}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entries, err := st.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Text != "second" {
		t.Errorf("expected overwritten text 'second', got %q", entries[0].Text)
	}
}

// TestSQLiteStore_Delete tests deleting present and absent timestamps
func TestSQLiteStore_Delete(t *testing.T) {
	st := setupTestDB(t)

	for ts := int64(1); ts <= 3; ts++ {
		if err := st.Put(store.Entry{Text: "text", Timestamp: ts}); err != nil {
			t.Fatalf("Put(%d) error = %v", ts, err)
		}
	}

	if err := st.Delete(2); err != nil {
		t.Fatalf("Delete(2) error = %v", err)
	}

	// Absent key is a no-op
	if err := st.Delete(99); err != nil {
		t.Fatalf("Delete(99) error = %v", err)
	}

	entries, err := st.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []int64{3, 1}
	if got := timestampsOf(entries); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected timestamps %v, got %v", want, got)
	}
}

// TestSQLiteStore_Clear tests removing all entries
func TestSQLiteStore_Clear(t *testing.T) {
	st := setupTestDB(t)

	for ts := int64(1); ts <= 5; ts++ {
		if err := st.Put(store.Entry{Text: "text", Timestamp: ts}); err != nil {
			t.Fatalf("Put(%d) error = %v", ts, err)
		}
	}

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	entries, err := st.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty list after Clear, got %d entries", len(entries))
	}

	// Clearing an empty store is fine
	if err := st.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

// TestSQLiteStore_Persistence tests that entries survive a new store instance
func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	st1, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := st1.Put(store.Entry{Text: "kept", Timestamp: 7}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	st1.Close()

	st2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer st2.Close()

	entries, err := st2.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "kept" {
		t.Errorf("expected persisted entry 'kept', got %+v", entries)
	}
}

// TestSQLiteStore_OperationFailure tests per-call failures on an unusable path
func TestSQLiteStore_OperationFailure(t *testing.T) {
	// Handles are opened per call, so a bad path fails each operation
	st := OpenSQLiteStore(filepath.Join(t.TempDir(), "nope", "test.db"))
	if err := st.Init(); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from Init, got %v", err)
	}
	if _, err := st.List(); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from List, got %v", err)
	}
	if err := st.Put(store.Entry{Text: "x", Timestamp: 1}); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from Put, got %v", err)
	}
}

// TestConfigStore tests the settings table
func TestConfigStore(t *testing.T) {
	st := setupTestDB(t)
	cfg := st.Config()

	if err := cfg.Set("theme", "sepia"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Set("theme", "dark"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	value, err := cfg.Get("theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "dark" {
		t.Errorf("expected theme=dark, got %s", value)
	}

	if _, err := cfg.Get("missing"); err == nil {
		t.Error("expected error for missing key")
	}

	values, err := cfg.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if values["theme"] != "dark" || values["db_version"] != SchemaVersion {
		t.Errorf("unexpected config values: %v", values)
	}
}
