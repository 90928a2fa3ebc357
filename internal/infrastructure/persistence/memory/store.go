package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/presencelab/beacon-bridge/internal/domain/repository"
)

// Entry is one pushed value with its generated key.
type Entry struct {
	Key   string
	Value []byte
}

// Store provides an in-memory implementation of the key-path store.
// Thread-safe for concurrent access; used in tests and local development.
type Store struct {
	mu    sync.RWMutex
	docs  map[string][]byte  // path -> document JSON
	lists map[string][]Entry // path -> pushed entries, insertion order
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		docs:  make(map[string][]byte),
		lists: make(map[string][]Entry),
	}
}

// Set overwrites the document at path.
func (s *Store) Set(ctx context.Context, path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = data
	return nil
}

// Push appends value under path with a generated, insertion-ordered key.
func (s *Store) Push(ctx context.Context, path string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Arrival order at the store, not webhook-call order: concurrent pushes
	// land in whatever order they take the lock.
	entry := Entry{Key: repository.NewPushKey(time.Now()), Value: data}
	s.lists[path] = append(s.lists[path], entry)
	return entry.Key, nil
}

// Get unmarshals the document at path into dest.
func (s *Store) Get(ctx context.Context, path string, dest any) error {
	s.mu.RLock()
	data, ok := s.docs[path]
	s.mu.RUnlock()

	if !ok {
		return repository.ErrNotFound
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}

// Entries returns a copy of the pushed entries under path, in insertion
// order. Test helper; not part of the store contract.
func (s *Store) Entries(path string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, len(s.lists[path]))
	copy(entries, s.lists[path])
	return entries
}
