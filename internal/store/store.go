// Package store provides the mutex-serialized JSON document store the
// flat-file registries are built on.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile is a single JSON document on disk. All access goes through an
// exclusive critical section so concurrent load→mutate→save cycles never
// clobber each other, and saves replace the file atomically so a reader
// never observes a partially written document.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile creates a store backed by the document at path. The file is
// created on first use.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the backing file path.
func (f *JSONFile) Path() string { return f.path }

// Load reads the document into v. A missing file initializes the document
// from v's current (zero) value and persists it, so first use is idempotent.
func (f *JSONFile) Load(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(v)
}

// Save serializes v and atomically replaces the document.
func (f *JSONFile) Save(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(v)
}

// Update runs a load→mutate→save cycle under the store's lock. The mutate
// function operates on v after it has been loaded; returning an error aborts
// the cycle without writing.
func (f *JSONFile) Update(v any, mutate func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(v); err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	return f.save(v)
}

func (f *JSONFile) load(v any) error {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		// Self-initialize with the caller's default document.
		return f.save(v)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &CorruptError{Path: f.path, Err: err}
	}
	return nil
}

func (f *JSONFile) save(v any) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", f.path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
