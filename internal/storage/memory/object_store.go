// Package memory stores objects in-memory for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ObjectStore keeps uploaded objects in a map and returns pseudo URLs.
type ObjectStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory object store.
func New() *ObjectStore {
	return &ObjectStore{
		data: make(map[string][]byte),
	}
}

// Put stores data under key and returns a memory:// URL.
func (s *ObjectStore) Put(_ context.Context, key string, _ string, data []byte) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("object key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return "memory://" + key, nil
}

// List returns the stored keys under prefix in sorted order.
func (s *ObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes one object; deleting a missing key is a no-op.
func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Get returns a stored object's bytes, for assertions in tests.
func (s *ObjectStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	return data, ok
}

// Len reports how many objects are stored.
func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
