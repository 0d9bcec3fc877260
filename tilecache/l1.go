// Package tilecache implements the two-tier tile cache of spec.md §4.12:
// an in-process size-bounded L1 in front of a shared Redis-backed L2, with
// best-effort L2 writes and at-most-one-concurrent-build-per-key
// deduplication. Grounded on
// GrokNexus-QuantatomAI/grid_cache_tiered_advanced.go's TieredGridCache
// shape (L1/L2 tiering, Get-falls-through-to-L2-then-populates-L1,
// version-bump pub/sub invalidation), simplified to this module's actual
// stack: `hashicorp/golang-lru/v2` instead of ristretto for L1, and
// `golang.org/x/sync/singleflight` instead of a hand-rolled per-key waiter
// map for request coalescing.
package tilecache

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// L1 is an in-process, byte-budget-bounded cache of encoded tile bytes.
type L1 struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, []byte]
	maxBytes int64
	curBytes int64
	hits     atomic.Int64
	misses   atomic.Int64
}

// NewL1 creates an in-process tile cache with the given byte budget.
func NewL1(maxBytes int64) *L1 {
	l := &L1{maxBytes: maxBytes}
	// As with store/cache.ChunkCache, capacity is nominal; eviction is
	// driven by the explicit byte budget in Set, not item count.
	c, err := lru.NewWithEvict[string, []byte](1<<31-1, l.onEvict)
	if err != nil {
		panic(err)
	}
	l.lru = c
	return l
}

func (l *L1) onEvict(key string, value []byte) {
	l.curBytes -= int64(len(value))
}

// Get returns the cached tile bytes for key, if present.
func (l *L1) Get(key string) ([]byte, bool) {
	l.mu.Lock()
	v, ok := l.lru.Get(key)
	l.mu.Unlock()

	if ok {
		l.hits.Add(1)
	} else {
		l.misses.Add(1)
	}
	return v, ok
}

// Set inserts tile bytes under key, evicting LRU entries until the cache
// fits within its byte budget.
func (l *L1) Set(key string, value []byte) {
	size := int64(len(value))
	if size > l.maxBytes {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.lru.Peek(key); ok {
		l.curBytes -= int64(len(old))
	}
	l.curBytes += size
	l.lru.Add(key, value)

	for l.curBytes > l.maxBytes {
		_, _, ok := l.lru.RemoveOldest()
		if !ok {
			break
		}
	}
}

// Invalidate removes key from L1, if present.
func (l *L1) Invalidate(key string) {
	l.mu.Lock()
	l.lru.Remove(key)
	l.mu.Unlock()
}

// Stats reports observable L1 counters.
type Stats struct {
	Hits   int64
	Misses int64
	Len    int
	Bytes  int64
}

// Stats returns L1's hit/miss/size counters.
func (l *L1) Stats() Stats {
	l.mu.Lock()
	n := l.lru.Len()
	b := l.curBytes
	l.mu.Unlock()
	return Stats{Hits: l.hits.Load(), Misses: l.misses.Load(), Len: n, Bytes: b}
}
