package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// FileStore keeps every key as a top-level entry of one TOML file, so the
// profile stays readable and hand-editable. The whole file is rewritten on
// each Set.
type FileStore struct {
	mu     sync.Mutex
	path   string
	doc    map[string]any
	closed bool
}

// OpenFile loads path, treating a missing file as an empty profile.
func OpenFile(path string) (*FileStore, error) {
	fs := &FileStore{path: path, doc: map[string]any{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	if err := toml.Unmarshal(data, &fs.doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}
	if fs.doc == nil {
		fs.doc = map[string]any{}
	}
	return fs, nil
}

func (fs *FileStore) Path() string { return fs.path }

func (fs *FileStore) Get(key string) ([]byte, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil, false, ErrClosed
	}
	v, ok := fs.doc[key]
	if !ok {
		return nil, false, nil
	}
	data, err := toml.Marshal(map[string]any{"v": v})
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return data, true, nil
}

func (fs *FileStore) Set(key string, value []byte) error {
	var env map[string]any
	if err := toml.Unmarshal(value, &env); err != nil {
		return fmt.Errorf("failed to parse value for %s: %w", key, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	v, ok := env["v"]
	if !ok {
		// TOML has no null; an absent value means the zero value.
		delete(fs.doc, key)
	} else {
		fs.doc[key] = v
	}
	return fs.flushLocked()
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}
	if _, ok := fs.doc[key]; !ok {
		return nil
	}
	delete(fs.doc, key)
	return fs.flushLocked()
}

func (fs *FileStore) Keys() ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(fs.doc))
	for k := range fs.doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closed = true
	return nil
}

func (fs *FileStore) flushLocked() error {
	data, err := toml.Marshal(fs.doc)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace profile file: %w", err)
	}
	return nil
}
