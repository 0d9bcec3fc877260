package store

import (
	"context"

	"github.com/stormcast-io/wxgrid/internal/pool"
)

// ChunkRequest identifies one chunk to fetch as part of a batch.
type ChunkRequest struct {
	ChunkY, ChunkX int
}

// ChunkResult pairs a chunk request with its fetched buffer or error.
type ChunkResult struct {
	ChunkRequest
	Data []float32
	Err  error
}

// ReadChunks fetches several chunks with bounded concurrency, honoring ctx
// cancellation. This is the synchronous façade spec.md §4.4 calls for: Go
// has no cooperative scheduler to "detach" from (every goroutine already
// pre-empts), so the façade here is simply a blocking call whose fan-out
// runs on a bounded worker pool instead of per-request unbounded goroutines
// — see internal/pool.WorkerPool, already proven by grib2/parallel.go.
func (a *Array) ReadChunks(ctx context.Context, reqs []ChunkRequest, workers int) []ChunkResult {
	results := make([]ChunkResult, len(reqs))
	p := pool.NewWorkerPool(ctx, workers)

	for i, req := range reqs {
		i, req := i, req
		_ = p.Submit(func() error {
			data, err := a.ReadChunk(ctx, req.ChunkY, req.ChunkX)
			results[i] = ChunkResult{ChunkRequest: req, Data: data, Err: err}
			return nil // errors are carried per-result, not aggregated by the pool
		})
	}

	_ = p.Wait()
	return results
}
