package tilecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// L2 is the shared tile cache tier, backed by Redis. An L2 failure is
// never fatal to the response path (spec.md §4.12); callers are expected
// to treat Get/Set errors as cache misses, not request failures.
type L2 struct {
	client         *redis.Client
	invalidatePref string
}

// NewL2 wraps an existing Redis client as the shared tile cache tier.
func NewL2(client *redis.Client, invalidatePrefix string) *L2 {
	if invalidatePrefix == "" {
		invalidatePrefix = "wxgrid:tilecache:invalidate"
	}
	return &L2{client: client, invalidatePref: invalidatePrefix}
}

// Get returns the cached tile bytes for key, if present and not expired.
func (l *L2) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := l.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores tile bytes under key with the given TTL.
func (l *L2) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return l.client.Set(ctx, key, value, ttl).Err()
}

// Invalidate deletes key from L2 and publishes an invalidation notice so
// other nodes' L1s can drop their copy, generalizing
// GrokNexus-QuantatomAI/grid_cache_tiered_advanced.go's
// InvalidateByAtomRevision's version-bump-plus-publish pattern to a single
// explicit key instead of a plan/view/atom-revision hierarchy.
func (l *L2) Invalidate(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	return l.client.Publish(ctx, l.invalidatePref, key).Err()
}

// Subscribe starts a background goroutine that calls onInvalidate for
// every key another node publishes as invalidated, until ctx is canceled.
func (l *L2) Subscribe(ctx context.Context, onInvalidate func(key string)) {
	sub := l.client.Subscribe(ctx, l.invalidatePref)
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				onInvalidate(msg.Payload)
			}
		}
	}()
}
