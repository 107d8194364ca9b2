package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// File stores each key as its own file inside a data directory.
// Reads take a shared flock, writes an exclusive one, and values are written
// to a temp file and renamed into place.
type File struct {
	dir string
}

// NewFile creates a File store rooted at dir. The directory is created on
// first write.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Dir returns the data directory.
func (f *File) Dir() string { return f.dir }

// Path returns the file that holds key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get reads the value stored under key.
func (f *File) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var content []byte
	err := f.withLock(key, syscall.LOCK_SH, func() error {
		var err error
		content, err = os.ReadFile(f.Path(key))
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		return nil
	})
	return content, err
}

// Set atomically replaces the value stored under key.
func (f *File) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	return f.withLock(key, syscall.LOCK_EX, func() error {
		path := f.Path(key)
		tmpPath := path + ".tmp"
		if err := os.WriteFile(tmpPath, value, 0o600); err != nil {
			return fmt.Errorf("write temp file: %w", err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("rename temp file: %w", err)
		}
		return nil
	})
}

// Close is a no-op; locks are released after every operation.
func (f *File) Close() error { return nil }

func (f *File) withLock(key string, lockType int, fn func() error) error {
	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	lock, err := os.OpenFile(f.Path(key)+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lock.Close() }()

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN) }()

	return fn()
}

var _ Backend = (*File)(nil)
