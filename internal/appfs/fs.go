// Package appfs provides a filesystem rooted at freewrite's data directory.
package appfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ConfigDir    = ".config/freewrite"
	DatabaseFile = "freewrite.db"
	LogFile      = "freewrite.log"
)

// FS is a filesystem rooted at the freewrite data directory
type FS struct {
	root string
}

// NewWithDataDir creates an FS with a custom data location.
// If dataDir is empty, uses the default ~/.config/freewrite/
// If dataDir is absolute, uses it directly
// If dataDir is relative, treats it as a subdirectory of ~/.config/freewrite/
func NewWithDataDir(dataDir string) (*FS, error) {
	root, err := ResolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}

	return &FS{root: root}, nil
}

// ResolveDataDir maps a configured data dir to an absolute directory
// without creating it.
func ResolveDataDir(dataDir string) (string, error) {
	if dataDir != "" && filepath.IsAbs(dataDir) {
		return dataDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ConfigDir, dataDir), nil
}

// NewWithRoot creates an FS with a custom root (for testing)
func NewWithRoot(root string) *FS {
	return &FS{root: root}
}

// ReadFile reads a file relative to the data directory
func (afs *FS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}

	return os.ReadFile(filepath.Join(afs.root, name))
}

// WriteFile writes data to a file relative to the data directory.
// The data is written to a temporary sibling first and renamed into place,
// so readers never observe a partially written file.
func (afs *FS) WriteFile(name string, data []byte, perm os.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}

	fullPath := filepath.Join(afs.root, name)
	dir := filepath.Dir(fullPath)

	// Ensure parent directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Remove removes a file relative to the data directory
func (afs *FS) Remove(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
	}

	return os.Remove(filepath.Join(afs.root, name))
}

// Path returns the absolute path of name inside the data directory
func (afs *FS) Path(name string) string {
	return filepath.Join(afs.root, name)
}

// Root returns the root directory path
func (afs *FS) Root() string {
	return afs.root
}
