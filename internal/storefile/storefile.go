// Package storefile loads and saves the catalog JSON document.
//
// Saves are whole-document and atomic. A gofrs/flock lock beside the store
// keeps a second batch process from writing the same file.
package storefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"cinedex/internal/catalog"
	"cinedex/internal/fileutil"
)

// ErrLocked reports that another process holds the store lock.
var ErrLocked = errors.New("store is locked by another process")

// File is the store document on disk.
type File struct {
	path string
	now  func() time.Time
	lock *flock.Flock
}

// Option customizes a File.
type Option func(*File)

// WithClock sets the source of schema and snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *File) {
		if now != nil {
			f.now = now
		}
	}
}

// New returns a handle for the store at path.
func New(path string, opts ...Option) *File {
	f := &File{path: path, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	f.lock = flock.New(f.LockPath())
	return f
}

// Path returns the store file path.
func (f *File) Path() string { return f.path }

// LockPath returns the lock file path.
func (f *File) LockPath() string { return f.path + ".lock" }

// Exists reports whether the store file is present.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load reads the store. A missing file yields a fresh store; unreadable or
// corrupt files are errors.
func (f *File) Load() (*catalog.Store, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		store := catalog.NewStore()
		store.Schema.LastUpdated = f.now().UTC()
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", f.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("read store %s: file is empty", f.path)
	}
	store := catalog.NewStore()
	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", f.path, err)
	}
	if store.Schema.Version == "" {
		store.Schema.Version = catalog.SchemaVersion
	}
	if store.Schema.Description == "" {
		store.Schema.Description = catalog.SchemaDescription
	}
	return store, nil
}

// Save stamps schema.lastUpdated and writes the whole document atomically.
func (f *File) Save(store *catalog.Store) error {
	if store == nil {
		return errors.New("save store: nil store")
	}
	store.Schema.LastUpdated = f.now().UTC()
	if err := fileutil.WriteJSONAtomic(f.path, store); err != nil {
		return fmt.Errorf("save store %s: %w", f.path, err)
	}
	return nil
}

// Lock takes the single-writer lock without blocking. The returned function
// releases it.
func (f *File) Lock() (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	ok, err := f.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, f.LockPath())
	}
	return f.lock.Unlock, nil
}

// Snapshot copies the current store to <store>.<timestamp>.bak and returns
// the copy's path. Without a store file there is nothing to snapshot and the
// path is empty.
func (f *File) Snapshot() (string, error) {
	if !f.Exists() {
		return "", nil
	}
	dst := fmt.Sprintf("%s.%s.bak", f.path, f.now().UTC().Format("20060102T150405Z"))
	if err := fileutil.CopyFileVerified(f.path, dst); err != nil {
		return "", fmt.Errorf("snapshot store: %w", err)
	}
	return dst, nil
}
