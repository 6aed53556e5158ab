// Package store persists the last synchronized generation of component
// records as a single JSON document.
//
// Writes go to a temp file which is renamed over the target, so a reader
// sees either the previous generation or the new one, never a partial file.
// A sibling lock file serializes writers across processes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/mvp-joe/component-atlas/internal/component"
)

var (
	// ErrNotFound means no generation has been persisted yet. It is the normal
	// first-run outcome, not a failure.
	ErrNotFound = errors.New("metadata store not found")

	// ErrStoreIO wraps read, write and decode failures.
	ErrStoreIO = errors.New("metadata store I/O error")
)

// Store is the durable record cache between runs.
type Store interface {
	Load(ctx context.Context) ([]component.ComponentRecord, error)
	Save(ctx context.Context, records []component.ComponentRecord) error
	Path() string
}

// FileStore implements Store on a single JSON file.
type FileStore struct {
	path string

	// writeTemp writes the encoded generation to the temp path. Tests swap it
	// to simulate a crash mid-save.
	writeTemp func(path string, data []byte) error
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:      path,
		writeTemp: writeFileSync,
	}
}

// Path returns the metadata file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted generation. Returns ErrNotFound if the file does
// not exist yet.
func (s *FileStore) Load(ctx context.Context) ([]component.ComponentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrStoreIO, s.path, err)
	}

	var records []component.ComponentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: corrupt metadata file %s: %v", ErrStoreIO, s.path, err)
	}

	for i := range records {
		records[i] = component.Normalize(records[i])
	}
	return records, nil
}

// Save replaces the persisted generation using atomic write (temp + rename).
func (s *FileStore) Save(ctx context.Context, records []component.ComponentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create store directory: %v", ErrStoreIO, err)
	}

	if records == nil {
		records = []component.ComponentRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal records: %v", ErrStoreIO, err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: failed to lock store: %v", ErrStoreIO, err)
	}
	defer lock.Unlock()

	tmpPath := s.path + ".tmp"
	if err := s.writeTemp(tmpPath, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to write temp file: %v", ErrStoreIO, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to rename temp file: %v", ErrStoreIO, err)
	}

	return nil
}

// writeFileSync writes data and flushes it to disk before returning.
func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
