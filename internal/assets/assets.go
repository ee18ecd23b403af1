// Package assets handles model and texture file loading and caching.
package assets

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/logger"
	"github.com/Faultbox/objview/pkg/formats"
)

// ErrNotFound is returned for assets that exist under no search root.
var ErrNotFound = formats.ErrFileNotFound

// Source provides file contents to the loaders.
type Source interface {
	Open(path string) (io.ReadCloser, error)
	Load(path string) ([]byte, error)
}

// Manager resolves relative asset paths against a list of search roots.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager with the given search roots.
func NewManager(roots ...string) *Manager {
	m := &Manager{
		cache: NewCache(),
	}
	for _, root := range roots {
		m.AddRoot(root)
	}
	return m
}

// AddRoot adds a search root to the manager.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) {
	m.mu.Lock()
	m.roots = append(m.roots, filepath.Clean(dir))
	m.mu.Unlock()
}

// Resolve returns the on-disk path for path.
func (m *Manager) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", formats.OpenError(path, err)
		}
		return path, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.roots[i], path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if len(m.roots) == 0 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", formats.OpenError(path, fs.ErrNotExist)
}

// Load reads a file through the search roots.
func (m *Manager) Load(path string) ([]byte, error) {
	// Check cache first
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, formats.OpenError(resolved, err)
	}

	m.cache.Set(path, data)
	logger.Debug("asset loaded", zap.String("path", resolved), zap.Int("bytes", len(data)))
	return data, nil
}

// Open streams a file from disk without caching it. Models and material
// libraries are read once per load, so only Load keeps bytes around.
func (m *Manager) Open(path string) (io.ReadCloser, error) {
	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return nil, formats.OpenError(resolved, err)
	}
	return f, nil
}

// DropCache frees cached bytes once a batch of loads has finished.
func (m *Manager) DropCache() {
	entries, size := m.cache.Size()
	m.cache.Clear()
	if entries > 0 {
		logger.Debug("asset cache dropped", zap.Int("entries", entries), zap.Int("bytes", size))
	}
}

// IsNotFound reports whether err means a file could not be found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// Close drops the roots and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Size returns the number of cached entries and their total byte count.
func (c *Cache) Size() (entries, bytes int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, data := range c.data {
		bytes += len(data)
	}
	return len(c.data), bytes
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Stats returns the manager's cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}
