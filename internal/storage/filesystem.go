package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FilesystemBackend stores one file per key on disk.
// Layout: <root>/<key>.json, with path separators in keys rejected at the
// boundary so a key can never escape the root.
type FilesystemBackend struct {
	root      string
	writeLock sync.Mutex
}

// NewFilesystemBackend creates a filesystem-based backend rooted at root.
func NewFilesystemBackend(root string) *FilesystemBackend {
	return &FilesystemBackend{root: root}
}

// Path returns the filesystem path for the given key.
func (b *FilesystemBackend) Path(key string) string {
	return filepath.Join(b.root, sanitizeKey(key)+".json")
}

// sanitizeKey strips characters that would alter the file path.
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return replacer.Replace(key)
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (b *FilesystemBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		return nil, ErrKeyNotFound
	}
	return data, nil
}

// Set persists value atomically using temp file + rename.
func (b *FilesystemBackend) Set(key string, value []byte) error {
	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	if err := os.MkdirAll(b.root, 0755); err != nil {
		return err
	}

	path := b.Path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, value, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Delete removes the file for key if present.
func (b *FilesystemBackend) Delete(key string) error {
	err := os.Remove(b.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Keys returns all stored keys with the given prefix.
func (b *FilesystemBackend) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
