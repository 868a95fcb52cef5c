package history_test

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/rs/zerolog"
	"github.com/yiblet/freewrite/internal/appfs"
	"github.com/yiblet/freewrite/internal/history"
	"github.com/yiblet/freewrite/internal/store"
	"github.com/yiblet/freewrite/internal/store/dbstore"
	"github.com/yiblet/freewrite/internal/store/memstore"
	"github.com/yiblet/freewrite/internal/store/mirror"
)

func newManager(t *testing.T) (*history.Manager, *memstore.MemoryStore, *mirror.Memory) {
	t.Helper()
	primary := memstore.NewMemoryStore()
	mir := mirror.NewMemory()
	return history.NewManager(primary, mir), primary, mir
}

func entry(ts int64) store.Entry {
	return store.Entry{Text: fmt.Sprintf("entry %d", ts), Timestamp: ts}
}

func timestamps(entries []store.Entry) []int64 {
	result := make([]int64, len(entries))
	for i, e := range entries {
		result[i] = e.Timestamp
	}
	return result
}

func TestAppend_CapsAndOrdersNewestFirst(t *testing.T) {
	m, _, _ := newManager(t)

	for ts := int64(1); ts <= 25; ts++ {
		gt.NoError(t, m.Append(entry(ts)))

		entries, err := m.List()
		gt.NoError(t, err)
		gt.True(t, len(entries) <= store.MaxEntries)
		gt.Equal(t, entries[0].Timestamp, ts)
		for i := 1; i < len(entries); i++ {
			gt.True(t, entries[i-1].Timestamp > entries[i].Timestamp)
		}
	}
}

func TestAppend_EleventhEvictsOldest(t *testing.T) {
	m, _, mir := newManager(t)

	for ts := int64(1); ts <= 11; ts++ {
		gt.NoError(t, m.Append(entry(ts)))
	}

	entries, err := m.List()
	gt.NoError(t, err)
	gt.Equal(t, timestamps(entries), []int64{11, 10, 9, 8, 7, 6, 5, 4, 3, 2})

	// The mirror follows the same retention
	mirrored, err := mir.Load()
	gt.NoError(t, err)
	gt.Equal(t, timestamps(mirrored), []int64{11, 10, 9, 8, 7, 6, 5, 4, 3, 2})
}

func TestAppend_RejectsBlankText(t *testing.T) {
	m, primary, mir := newManager(t)

	err := m.Append(store.Entry{Text: "  \n\t", Timestamp: 1})
	gt.True(t, errors.Is(err, history.ErrEmptyText))

	count, _ := primary.Count()
	gt.Equal(t, count, 0)
	gt.False(t, mir.Present())
}

func TestAppend_RejectsInvalidTimestamp(t *testing.T) {
	m, _, _ := newManager(t)
	gt.Error(t, m.Append(store.Entry{Text: "text", Timestamp: 0}))
}

func TestAppend_TimestampCollisionOverwrites(t *testing.T) {
	m, _, mir := newManager(t)

	gt.NoError(t, m.Append(store.Entry{Text: "first", Timestamp: 5}))
	gt.NoError(t, m.Append(store.Entry{Text: "second", Timestamp: 5}))

	entries, err := m.List()
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
	gt.Equal(t, entries[0].Text, "second")

	mirrored, _ := mir.Load()
	gt.A(t, mirrored).Length(1)
	gt.Equal(t, mirrored[0].Text, "second")
}

func TestAppend_PrimaryFailureStillMirrors(t *testing.T) {
	m, primary, mir := newManager(t)

	gt.NoError(t, m.Append(entry(1)))
	primary.FailOn(memstore.OpPut, nil)

	err := m.Append(entry(2))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, store.ErrWrite))

	mirrored, err := mir.Load()
	gt.NoError(t, err)
	gt.Equal(t, timestamps(mirrored), []int64{2, 1})

	// The failed entry is visible on the fallback read path
	primary.FailOn(memstore.OpList, nil)
	entries, err := m.List()
	gt.NoError(t, err)
	gt.Equal(t, timestamps(entries), []int64{2, 1})
}

func TestAppend_MirrorFailureIsNotReported(t *testing.T) {
	m, _, mir := newManager(t)
	mir.SaveErr = errors.New("mirror full")

	gt.NoError(t, m.Append(entry(1)))

	entries, err := m.List()
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
}

func TestList_FallsBackToMirror(t *testing.T) {
	m, primary, mir := newManager(t)

	for ts := int64(1); ts <= 3; ts++ {
		gt.NoError(t, m.Append(entry(ts)))
	}

	primary.FailOn(memstore.OpList, nil)

	entries, err := m.List()
	gt.NoError(t, err)

	mirrored, err := mir.Load()
	gt.NoError(t, err)
	gt.Equal(t, entries, mirrored)
}

func TestList_FallbackNormalizesMirror(t *testing.T) {
	m, primary, mir := newManager(t)

	var unordered []store.Entry
	for ts := int64(1); ts <= 12; ts++ {
		unordered = append(unordered, entry(ts))
	}
	gt.NoError(t, mir.Save(unordered))
	primary.FailOn(memstore.OpList, nil)

	entries, err := m.List()
	gt.NoError(t, err)
	gt.Equal(t, timestamps(entries), []int64{12, 11, 10, 9, 8, 7, 6, 5, 4, 3})
}

func TestList_BothFail(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	primary := memstore.NewMemoryStore()
	mir := mirror.NewMemory()
	m := history.NewManager(primary, mir, history.WithLogger(logger))

	primary.FailOn(memstore.OpList, nil)
	mir.LoadErr = errors.New("mirror unreadable")

	entries, err := m.List()
	gt.Error(t, err)
	gt.True(t, errors.Is(err, store.ErrRead))
	gt.True(t, entries != nil)
	gt.A(t, entries).Length(0)

	gt.S(t, buf.String()).Contains("failed to load history mirror")
}

func TestDelete(t *testing.T) {
	m, _, mir := newManager(t)

	for ts := int64(1); ts <= 11; ts++ {
		gt.NoError(t, m.Append(entry(ts)))
	}

	gt.NoError(t, m.Delete(5))

	entries, err := m.List()
	gt.NoError(t, err)
	gt.Equal(t, timestamps(entries), []int64{11, 10, 9, 8, 7, 6, 4, 3, 2})

	mirrored, _ := mir.Load()
	gt.Equal(t, timestamps(mirrored), []int64{11, 10, 9, 8, 7, 6, 4, 3, 2})

	// Absent timestamp is a no-op
	gt.NoError(t, m.Delete(5))
	gt.NoError(t, m.Delete(1))
	entries, _ = m.List()
	gt.A(t, entries).Length(9)
}

func TestDelete_PrimaryFailureLeavesMirror(t *testing.T) {
	m, primary, mir := newManager(t)

	gt.NoError(t, m.Append(entry(1)))
	gt.NoError(t, m.Append(entry(2)))

	primary.FailOn(memstore.OpDelete, nil)
	gt.Error(t, m.Delete(1))

	mirrored, _ := mir.Load()
	gt.Equal(t, timestamps(mirrored), []int64{2, 1})
}

func TestClearAll(t *testing.T) {
	m, _, mir := newManager(t)

	for ts := int64(1); ts <= 4; ts++ {
		gt.NoError(t, m.Append(entry(ts)))
	}

	gt.NoError(t, m.ClearAll())

	entries, err := m.List()
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
	gt.False(t, mir.Present())
}

func TestClearAll_ReportsEachFailure(t *testing.T) {
	m, primary, mir := newManager(t)
	gt.NoError(t, m.Append(entry(1)))

	// Mirror failure alone is still a failure, but the primary is cleared
	mir.RemoveErr = errors.New("mirror locked")
	err := m.ClearAll()
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("mirror locked")
	count, _ := primary.Count()
	gt.Equal(t, count, 0)

	// Primary failure alone still removes the mirror
	mir.RemoveErr = nil
	gt.NoError(t, mir.Save([]store.Entry{entry(3)}))
	primary.FailOn(memstore.OpClear, nil)
	err = m.ClearAll()
	gt.True(t, errors.Is(err, store.ErrWrite))
	gt.False(t, mir.Present())
}

func TestGet(t *testing.T) {
	m, _, _ := newManager(t)

	_, err := m.Get(0)
	gt.Error(t, err)

	for ts := int64(1); ts <= 3; ts++ {
		gt.NoError(t, m.Append(entry(ts)))
	}

	e, err := m.Get(0)
	gt.NoError(t, err)
	gt.Equal(t, e.Timestamp, int64(3))

	e, err = m.Get(2)
	gt.NoError(t, err)
	gt.Equal(t, e.Timestamp, int64(1))

	_, err = m.Get(3)
	gt.Error(t, err)
	_, err = m.Get(-1)
	gt.Error(t, err)
}

func TestNow_UsesClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := history.NewManager(memstore.NewMemoryStore(), mirror.NewMemory(),
		history.WithClock(func() time.Time { return fixed }))

	gt.Equal(t, m.Now(), fixed.UnixMilli())
}

func TestManager_SQLiteAndFileMirror(t *testing.T) {
	dir := t.TempDir()
	primary, err := dbstore.NewSQLiteStore(filepath.Join(dir, appfs.DatabaseFile))
	gt.NoError(t, err)
	mir := mirror.NewFile(appfs.NewWithRoot(dir))
	m := history.NewManager(primary, mir)
	defer m.Close()

	for ts := int64(1); ts <= 11; ts++ {
		gt.NoError(t, m.Append(entry(ts)))
	}
	gt.NoError(t, m.Delete(5))

	entries, err := m.List()
	gt.NoError(t, err)
	gt.Equal(t, timestamps(entries), []int64{11, 10, 9, 8, 7, 6, 4, 3, 2})

	mirrored, err := mir.Load()
	gt.NoError(t, err)
	gt.Equal(t, mirrored, entries)

	gt.NoError(t, m.ClearAll())
	entries, err = m.List()
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
}
