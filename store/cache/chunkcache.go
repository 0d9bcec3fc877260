// Package cache implements the memory-bounded LRU of decompressed chunk
// buffers in front of the chunked store, per spec.md §4.5.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Key identifies a cached chunk by its array's store-path fingerprint and
// chunk coordinates.
type Key struct {
	Fingerprint uint64
	ChunkY      int
	ChunkX      int
}

// ChunkCache is a memory-bounded LRU of decompressed float32 chunk buffers.
// Eviction runs oldest-first until the incoming buffer fits within the byte
// budget; a buffer that alone exceeds the budget is dropped without
// insertion. hits/misses/evictions are relaxed atomics so callers can read
// them without taking the cache's mutex; entry and byte counts are read
// under the mutex.
type ChunkCache struct {
	mu        sync.Mutex
	lru       *simplelru.LRU[Key, []float32]
	maxBytes  int64
	curBytes  int64
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewChunkCache creates a chunk cache with the given byte budget.
func NewChunkCache(maxBytes int64) *ChunkCache {
	c := &ChunkCache{maxBytes: maxBytes}
	// A huge nominal capacity: simplelru.LRU only evicts on Add when its
	// element count exceeds this size, but eviction here is driven
	// explicitly by byte budget instead, so capacity itself must never bind.
	l, err := simplelru.NewLRU[Key, []float32](1<<31-1, nil)
	if err != nil {
		panic(err) // unreachable: constant capacity is always valid
	}
	c.lru = l
	return c
}

func entryBytes(v []float32) int64 {
	return int64(len(v)) * 4
}

// Get returns the cached buffer for key, if present, marking it most
// recently used.
func (c *ChunkCache) Get(key Key) ([]float32, bool) {
	c.mu.Lock()
	v, ok := c.lru.Get(key)
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put inserts a decompressed chunk buffer, evicting LRU entries until it
// fits within the byte budget. If the buffer alone exceeds the budget it is
// dropped without insertion.
func (c *ChunkCache) Put(key Key, value []float32) {
	size := entryBytes(value)
	if size > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.lru.Peek(key); ok {
		c.curBytes -= entryBytes(old)
		c.lru.Remove(key)
	}

	for c.curBytes+size > c.maxBytes {
		_, evicted, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.curBytes -= entryBytes(evicted)
		c.evictions.Add(1)
	}

	c.lru.Add(key, value)
	c.curBytes += size
}

// EvictTo shrinks the cache to at most targetBytes, evicting LRU entries
// first. Used for adaptive shrinking under memory pressure.
func (c *ChunkCache) EvictTo(targetBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.curBytes > targetBytes {
		_, evicted, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.curBytes -= entryBytes(evicted)
		c.evictions.Add(1)
	}
}

// Len returns the number of cached entries.
func (c *ChunkCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Bytes returns the current total byte cost of cached entries.
func (c *ChunkCache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curBytes
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Bytes     int64
}

// Stats returns observable counters. Entries/Bytes still take the mutex
// briefly (they reflect live LRU state); Hits/Misses/Evictions are relaxed
// atomics read without locking.
func (c *ChunkCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.Len(),
		Bytes:     c.Bytes(),
	}
}
