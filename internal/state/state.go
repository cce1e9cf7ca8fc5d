// Package state persists the single piece of session state that
// outlives a client restart: the active store identifier. Identity is
// never written to disk; it is re-derived from the server on startup.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type Store interface {
	ActiveStoreID() string
	SetActiveStoreID(id string) error
}

type payload struct {
	ActiveStoreID string `json:"active_store_id"`
}

// File is the on-disk implementation, a one-key JSON document.
type File struct {
	path string

	mu     sync.Mutex
	data   payload
	loaded bool
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) ActiveStoreID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	return f.data.ActiveStoreID
}

func (f *File) SetActiveStoreID(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.data.ActiveStoreID = id
	raw, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// load reads the file once; a missing or corrupt file resolves to an
// empty selection.
func (f *File) load() {
	if f.loaded {
		return
	}
	f.loaded = true
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, &f.data)
}

// Memory keeps the selection in process memory only, for tests.
type Memory struct {
	mu sync.Mutex
	id string
}

func (m *Memory) ActiveStoreID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func (m *Memory) SetActiveStoreID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
	return nil
}
