package texture

import (
	"crypto/sha256"
	"image"
	"sync"
)

// Resolver turns texture bytes into a decoded image, or nil when the bytes
// cannot be decoded.
type Resolver interface {
	Resolve(data []byte) *image.NRGBA
}

// Cache is a concurrency-safe, content-addressed decode cache.
type Cache struct {
	mu    sync.RWMutex
	items map[[sha256.Size]byte]*cacheEntry
	limit int
}

type cacheEntry struct {
	img *image.NRGBA // nil if decoding failed
}

// NewCache holds up to limit decoded textures; zero means 256.
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = 256
	}
	return &Cache{
		items: make(map[[sha256.Size]byte]*cacheEntry),
		limit: limit,
	}
}

// Resolve decodes and caches data. Returns nil if it is not an image.
func (c *Cache) Resolve(data []byte) *image.NRGBA {
	if len(data) == 0 {
		return nil
	}
	key := sha256.Sum256(data)

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	img, _ := Decode(data)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		return entry.img
	}
	if len(c.items) >= c.limit {
		clear(c.items)
	}
	c.items[key] = &cacheEntry{img: img}
	return img
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
