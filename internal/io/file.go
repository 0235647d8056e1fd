package ioutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// PartialSuffix is appended to files that are still being written.
const PartialSuffix = ".part"

// ErrTitleLocked is returned by LockTitle when another process holds the lock.
var ErrTitleLocked = errors.New("title is locked by another process")

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/downloads/Solo_Leveling/Chapter_1.0")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteAtomic writes a file through a temporary sibling and renames it into
// place once write succeeds.
//
// write receives the temporary path (path + PartialSuffix) and must create
// the file there. If write fails the temporary file is removed and path is
// left untouched, so readers only ever observe a complete file or none.
//
// Example:
//
//	err := WriteAtomic("/downloads/x.cbz", func(tmp string) error {
//	    return writeArchive(tmp)
//	})
func WriteAtomic(path string, write func(tmpPath string) error) error {
	tmp := path + PartialSuffix
	if err := write(tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(tmp), err)
	}
	return nil
}

// RemoveFiles deletes the named files inside dir and returns the names that
// were removed. Files that are already gone count as removed.
func RemoveFiles(dir string, names []string) ([]string, error) {
	removed := make([]string, 0, len(names))
	for _, name := range names {
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// RemoveDirIfEmpty removes dir when it is empty.
//
// It returns removed=false without an error when the directory still holds
// entries or is already gone. Other failures are returned.
func RemoveDirIfEmpty(dir string) (removed bool, err error) {
	err = os.Remove(dir)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	case isNotEmpty(dir):
		return false, nil
	default:
		return false, err
	}
}

// isNotEmpty checks the directory itself since the errno for a non-empty
// directory differs between platforms.
func isNotEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// LockTitle takes a non-blocking exclusive lock on root/<title>/.lock so two
// processes never download into the same title directory at once.
//
// The caller must Unlock the returned lock. ErrTitleLocked is returned when
// another process already holds it.
func LockTitle(root, title string) (*flock.Flock, error) {
	dir := TitleDir(root, title)
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create title directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, ".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire title lock: %w", err)
	}
	if !ok {
		return nil, ErrTitleLocked
	}
	return lock, nil
}
