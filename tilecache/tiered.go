package tilecache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stormcast-io/wxgrid/internal/obslog"
)

// Tiered orchestrates the L1 -> L2 -> miss lookup chain of spec.md §4.12,
// including optional at-most-one-concurrent-build-per-key deduplication
// via singleflight.
type Tiered struct {
	l1  *L1
	l2  *L2 // nil disables the shared tier
	ttl time.Duration
	sf  singleflight.Group

	logger *slog.Logger
}

// NewTiered builds a two-tier cache; l2 may be nil to run L1-only.
func NewTiered(l1 *L1, l2 *L2, ttl time.Duration) *Tiered {
	return &Tiered{l1: l1, l2: l2, ttl: ttl}
}

// SetLogger installs l as the cache's structured logger; passing nil
// reverts to the discard default.
func (t *Tiered) SetLogger(l *slog.Logger) { t.logger = l }

// Get performs the L1 -> L2 lookup chain for key, populating L1 on an L2
// hit. ok is false on a full miss (caller must build the tile itself).
func (t *Tiered) Get(ctx context.Context, key string) (data []byte, ok bool) {
	if b, hit := t.l1.Get(key); hit {
		obslog.Or(t.logger).Debug("tile cache hit", "tile_key", key, "tier", "l1")
		return b, true
	}
	if t.l2 == nil {
		obslog.Or(t.logger).Debug("tile cache miss", "tile_key", key)
		return nil, false
	}
	b, hit, err := t.l2.Get(ctx, key)
	if err != nil || !hit {
		obslog.Or(t.logger).Debug("tile cache miss", "tile_key", key)
		return nil, false
	}
	obslog.Or(t.logger).Debug("tile cache hit", "tile_key", key, "tier", "l2")
	t.l1.Set(key, b)
	return b, true
}

// Put writes tile bytes to L1 (always) and L2 (best effort; an L2 error is
// swallowed, never surfaced to the caller), per spec.md §4.12 step 10.
func (t *Tiered) Put(ctx context.Context, key string, data []byte) {
	t.l1.Set(key, data)
	if t.l2 != nil {
		_ = t.l2.Set(ctx, key, data, t.ttl)
	}
}

// Invalidate removes key from both tiers and, if L2 is configured,
// notifies other nodes.
func (t *Tiered) Invalidate(ctx context.Context, key string) {
	t.l1.Invalidate(key)
	if t.l2 != nil {
		_ = t.l2.Invalidate(ctx, key)
	}
}

// GetOrBuild returns the cached bytes for key if present; otherwise it
// calls build exactly once per key even under concurrent callers
// (singleflight), caches the result, and returns it to every waiter.
func (t *Tiered) GetOrBuild(ctx context.Context, key string, build func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, hit := t.Get(ctx, key); hit {
		return b, nil
	}

	v, err, _ := t.sf.Do(key, func() (interface{}, error) {
		if b, hit := t.Get(ctx, key); hit {
			return b, nil
		}
		b, err := build(ctx)
		if err != nil {
			return nil, err
		}
		t.Put(ctx, key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
