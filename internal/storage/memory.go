package storage

import (
	"strings"
	"sync"
)

// MemoryBackend is an in-memory backend for testing.
type MemoryBackend struct {
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryBackend creates a new in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (b *MemoryBackend) Get(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	// Return a copy to prevent mutation
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set persists value under key.
func (b *MemoryBackend) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	b.values[key] = stored
	return nil
}

// Delete removes key if present.
func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

// Keys returns all stored keys with the given prefix.
func (b *MemoryBackend) Keys(prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var keys []string
	for key := range b.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Reset clears all values (for testing).
func (b *MemoryBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = make(map[string][]byte)
}
