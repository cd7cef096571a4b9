package bundle

import (
	"context"
	"sync"
)

// Cache stores fetched bundle bytes keyed by logical path. Get reports a
// miss with ok=false; errors are reserved for storage faults.
type Cache interface {
	Get(ctx context.Context, name string) (data []byte, ok bool, err error)
	Put(ctx context.Context, name string, data []byte) error
}

// MemoryCache keeps fetched files in process memory for the duration of a
// run.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (m *MemoryCache) Get(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[name]
	return data, ok, nil
}

func (m *MemoryCache) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[name] = data
	return nil
}

// CachedFs layers a Cache over a backend Fs. Only successful reads are
// cached; ErrNotExist is never memoized so a later patch of the mirror is
// picked up.
type CachedFs struct {
	backend Fs
	cache   Cache
}

// NewCachedFs wraps backend with cache.
func NewCachedFs(backend Fs, cache Cache) *CachedFs {
	return &CachedFs{backend: backend, cache: cache}
}

func (c *CachedFs) Read(ctx context.Context, name string) ([]byte, error) {
	if data, ok, err := c.cache.Get(ctx, name); err != nil {
		return nil, err
	} else if ok {
		return data, nil
	}

	data, err := c.backend.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	// A cache write fault degrades to an uncached read.
	_ = c.cache.Put(ctx, name, data)
	return data, nil
}
