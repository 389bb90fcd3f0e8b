// Package storage provides the durable local key-value store backing the
// diary. It is the Go counterpart of the browser localStorage the journal
// originally persisted into: opaque string keys, JSON byte values, no
// referential coupling between namespaces.
//
// Two durable backends are provided. FilesystemBackend keeps one file per
// key under a data directory and is the default. SQLiteBackend keeps a
// single kv table in a SQLite database for users who prefer one file.
// MemoryBackend exists for tests.
package storage

import "errors"

// ErrKeyNotFound is returned by Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// Backend is the interface for durable key-value storage backends.
type Backend interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Set persists value under key, overwriting any prior value.
	Set(key string, value []byte) error

	// Delete removes key if present. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys returns all stored keys with the given prefix.
	Keys(prefix string) ([]string, error)
}
