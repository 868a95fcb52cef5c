package mirror_test

import (
	"errors"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yiblet/freewrite/internal/appfs"
	"github.com/yiblet/freewrite/internal/store"
	"github.com/yiblet/freewrite/internal/store/mirror"
)

var (
	_ store.Mirror = (*mirror.File)(nil)
	_ store.Mirror = (*mirror.Memory)(nil)
)

func TestFile_LoadMissing(t *testing.T) {
	m := mirror.NewFile(appfs.NewWithRoot(t.TempDir()))

	entries, err := m.Load()
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
}

func TestFile_SaveLoad(t *testing.T) {
	fsys := appfs.NewWithRoot(t.TempDir())
	m := mirror.NewFile(fsys)

	saved := []store.Entry{
		{Text: "second", Timestamp: 2000},
		{Text: "first\nwith newline", Timestamp: 1000},
	}
	gt.NoError(t, m.Save(saved))

	loaded, err := m.Load()
	gt.NoError(t, err)
	gt.Equal(t, loaded, saved)

	raw, err := fsys.ReadFile(mirror.Key)
	gt.NoError(t, err)
	gt.S(t, string(raw)).Contains(`"timestamp":2000`)
	gt.S(t, string(raw)).Contains(`"text":"second"`)
}

func TestFile_SaveEmpty(t *testing.T) {
	fsys := appfs.NewWithRoot(t.TempDir())
	m := mirror.NewFile(fsys)

	gt.NoError(t, m.Save(nil))

	raw, err := fsys.ReadFile(mirror.Key)
	gt.NoError(t, err)
	gt.Equal(t, string(raw), "[]")
}

func TestFile_Corrupt(t *testing.T) {
	fsys := appfs.NewWithRoot(t.TempDir())
	gt.NoError(t, fsys.WriteFile(mirror.Key, []byte("{not json"), 0644))

	_, err := mirror.NewFile(fsys).Load()
	gt.Error(t, err)
	gt.True(t, errors.Is(err, store.ErrRead))
}

func TestFile_Remove(t *testing.T) {
	fsys := appfs.NewWithRoot(t.TempDir())
	m := mirror.NewFile(fsys)

	// Removing a missing mirror is fine
	gt.NoError(t, m.Remove())

	gt.NoError(t, m.Save([]store.Entry{{Text: "x", Timestamp: 1}}))
	gt.NoError(t, m.Remove())

	entries, err := m.Load()
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
}

type brokenFS struct{}

func (brokenFS) ReadFile(string) ([]byte, error) { return nil, os.ErrPermission }

func (brokenFS) WriteFile(string, []byte, os.FileMode) error { return os.ErrPermission }

func (brokenFS) Remove(string) error { return os.ErrPermission }

func TestFile_FilesystemErrors(t *testing.T) {
	m := mirror.NewFile(brokenFS{})

	_, err := m.Load()
	gt.True(t, errors.Is(err, store.ErrRead))
	gt.True(t, errors.Is(err, os.ErrPermission))

	err = m.Save([]store.Entry{{Text: "x", Timestamp: 1}})
	gt.True(t, errors.Is(err, store.ErrWrite))

	err = m.Remove()
	gt.True(t, errors.Is(err, store.ErrWrite))
}

func TestMemory(t *testing.T) {
	m := mirror.NewMemory()
	gt.False(t, m.Present())

	gt.NoError(t, m.Save([]store.Entry{{Text: "x", Timestamp: 1}}))
	gt.True(t, m.Present())

	entries, err := m.Load()
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)

	m.LoadErr = errors.New("boom")
	_, err = m.Load()
	gt.Error(t, err)

	gt.NoError(t, m.Remove())
	gt.False(t, m.Present())
}
