// Package client implements the questionnaire flow against the HTTP API:
// session identity reconciliation, the local answer cache, step navigation
// and email dispatch. The CLI drives it; tests substitute the API interface.
package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
)

// LocalStore is the persistent client-side key-value store. It stands in
// for browser local storage: answers and the session id mirror live here.
type LocalStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore is a LocalStore backed by a single JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFileStore loads the store file, creating parent directories as needed.
// A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading local store: %w", err)
	}
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("error parsing local store: %w", err)
		}
	}
	return s, nil
}

// Get returns the stored value for key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Set writes the value and persists the file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flushLocked()
}

// Delete removes the key and persists the file. Deleting an absent key is
// a no-op.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	raw, err := sonic.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("error encoding local store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("error creating store directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("error writing local store: %w", err)
	}
	return nil
}

// MemoryLocalStore is an in-memory LocalStore for tests.
type MemoryLocalStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryLocalStore creates an empty in-memory store.
func NewMemoryLocalStore() *MemoryLocalStore {
	return &MemoryLocalStore{data: make(map[string]string)}
}

func (s *MemoryLocalStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryLocalStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryLocalStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryLocalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
