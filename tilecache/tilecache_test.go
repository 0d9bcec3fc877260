package tilecache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestL2(t *testing.T) (*L2, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewL2(client, ""), mr
}

func TestL1EvictsByByteBudget(t *testing.T) {
	l1 := NewL1(32)
	l1.Set("a", make([]byte, 16))
	l1.Set("b", make([]byte, 16))
	l1.Set("c", make([]byte, 16)) // forces eviction of "a"

	_, ok := l1.Get("a")
	require.False(t, ok, "expected 'a' to be evicted")

	_, ok = l1.Get("b")
	require.True(t, ok, "expected 'b' to survive")

	require.LessOrEqual(t, l1.Stats().Bytes, int64(32))
}

func TestTieredPopulatesL1FromL2(t *testing.T) {
	l2, _ := newTestL2(t)
	ctx := context.Background()
	require.NoError(t, l2.Set(ctx, "wms:k1", []byte("tile-bytes"), time.Minute))

	tiered := NewTiered(NewL1(1<<20), l2, time.Minute)
	b, ok := tiered.Get(ctx, "wms:k1")
	require.True(t, ok, "expected L2 hit")
	require.Equal(t, "tile-bytes", string(b))

	// Now it should be in L1 too, independent of L2.
	l2.client.FlushAll(ctx)
	b2, ok := tiered.Get(ctx, "wms:k1")
	require.True(t, ok, "expected L1-populated hit after L2 flush")
	require.Equal(t, "tile-bytes", string(b2))
}

func TestTieredIdenticalKeyYieldsIdenticalBytes(t *testing.T) {
	tiered := NewTiered(NewL1(1<<20), nil, time.Minute)
	ctx := context.Background()

	b1, err := tiered.GetOrBuild(ctx, "wms:stable", func(context.Context) ([]byte, error) {
		return []byte("rendered-once"), nil
	})
	require.NoError(t, err)

	b2, err := tiered.GetOrBuild(ctx, "wms:stable", func(context.Context) ([]byte, error) {
		t.Fatalf("build should not run again for a cached key")
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestGetOrBuildDeduplicatesConcurrentBuilds(t *testing.T) {
	tiered := NewTiered(NewL1(1<<20), nil, time.Minute)
	ctx := context.Background()
	var buildCount atomic.Int64

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			b, err := tiered.GetOrBuild(ctx, "wms:concurrent", func(context.Context) ([]byte, error) {
				buildCount.Add(1)
				time.Sleep(10 * time.Millisecond)
				return []byte("built"), nil
			})
			if err != nil {
				t.Errorf("GetOrBuild: %v", err)
				return
			}
			results[idx] = b
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, "built", string(r))
	}
	// singleflight only guarantees dedup among requests that overlap in
	// time; a generous upper bound still catches a broken (non-deduped) impl.
	require.LessOrEqual(t, buildCount.Load(), int64(4))
}
