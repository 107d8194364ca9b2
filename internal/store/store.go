// Package store provides key-value byte stores for persisting ledger state.
package store

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Store is a key-value byte store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
}

// Backend is a Store that holds resources which must be released.
type Backend interface {
	Store
	io.Closer
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// SQLiteFileName is the database file created in the data directory.
const SQLiteFileName = "wintheday.db"

// Open creates the named backend rooted at dir.
func Open(backend, dir string) (Backend, error) {
	switch backend {
	case "", BackendFile:
		return NewFile(dir), nil
	case BackendSQLite:
		return NewSQLite(filepath.Join(dir, SQLiteFileName))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", backend, BackendFile, BackendSQLite)
	}
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}
