// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"container/list"
	"sync"
	"time"

	"github.com/vitaly-z/brainy-sub013/lib/clock"
	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// cacheEntry is one cached object. data is uncompressed.
type cacheEntry struct {
	hash       objecthash.Hash
	data       []byte
	metadata   Metadata
	lastAccess time.Time
	size       int64
}

// lruCache is an LRU cache bounded by total payload bytes rather than
// entry count. The list front is the most recently used entry;
// eviction takes from the back.
//
// lruCache is safe for concurrent use.
type lruCache struct {
	mu       sync.Mutex
	clock    clock.Clock
	capacity int64
	used     int64
	order    *list.List
	entries  map[objecthash.Hash]*list.Element
}

// newLRUCache returns a cache holding at most capacity bytes. A
// capacity of zero or less disables caching.
func newLRUCache(capacity int64, c clock.Clock) *lruCache {
	return &lruCache{
		clock:    c,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[objecthash.Hash]*list.Element),
	}
}

// get returns a copy of the cached bytes and refreshes the entry's
// recency.
func (c *lruCache) get(hash objecthash.Hash) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[hash]
	if !ok {
		return nil, false
	}
	entry := element.Value.(*cacheEntry)
	entry.lastAccess = c.clock.Now()
	c.order.MoveToFront(element)

	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, true
}

// metadata returns the metadata snapshot of a cached entry without
// touching recency.
func (c *lruCache) metadata(hash objecthash.Hash) (Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	element, ok := c.entries[hash]
	if !ok {
		return Metadata{}, false
	}
	return element.Value.(*cacheEntry).metadata, true
}

// contains reports whether hash is cached without touching recency.
func (c *lruCache) contains(hash objecthash.Hash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[hash]
	return ok
}

// put inserts or replaces an entry, evicting least-recently-used
// entries until it fits. Objects larger than the whole budget are not
// cached. Returns the number of entries evicted.
func (c *lruCache) put(hash objecthash.Hash, data []byte, metadata Metadata) int {
	size := int64(len(data))
	if size > c.capacity || c.capacity <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[hash]; ok {
		c.removeElement(element)
	}

	evicted := 0
	for c.used+size > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		evicted++
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	entry := &cacheEntry{
		hash:       hash,
		data:       stored,
		metadata:   metadata,
		lastAccess: c.clock.Now(),
		size:       size,
	}
	c.entries[hash] = c.order.PushFront(entry)
	c.used += size
	return evicted
}

// updateMetadata replaces the metadata snapshot of a cached entry
// without changing its recency. No-op if not cached.
func (c *lruCache) updateMetadata(hash objecthash.Hash, metadata Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.entries[hash]; ok {
		element.Value.(*cacheEntry).metadata = metadata
	}
}

// remove drops hash from the cache.
func (c *lruCache) remove(hash objecthash.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.entries[hash]; ok {
		c.removeElement(element)
	}
}

// clear drops every entry.
func (c *lruCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[objecthash.Hash]*list.Element)
	c.used = 0
}

// usage returns the entry count and byte total.
func (c *lruCache) usage() (entries int, bytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.used
}

// removeElement must be called with mu held.
func (c *lruCache) removeElement(element *list.Element) {
	entry := c.order.Remove(element).(*cacheEntry)
	delete(c.entries, entry.hash)
	c.used -= entry.size
}
