// Package store implements the Zarr-V3-compatible chunked multiscale array
// store: byte-range reads against an object-store path, one array per
// (model, parameter, level, reference-time, forecast-hour), per spec.md §4.4.
package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/stormcast-io/wxgrid/internal/obslog"
	"github.com/stormcast-io/wxgrid/store/codec"
	"github.com/stormcast-io/wxgrid/wxerr"
)

// Array is a read-only handle on one chunked array in an object store,
// generalizing TuSKan-go-zarr/reader.go's Reader to the v3 zarr.json layout
// and multiscale-pyramid siblings spec.md §3 and §6 describe.
type Array struct {
	Path       string // array root path within the bucket
	store      *ObjectStore
	meta       *Metadata
	multiscale *Multiscale // nil if the array has no pyramid
	logger     *slog.Logger
}

// SetLogger installs l as the array's structured logger; passing nil
// reverts to the discard default.
func (a *Array) SetLogger(l *slog.Logger) { a.logger = l }

// OpenArray opens the array rooted at path within store, reading and
// parsing its zarr.json (and .multiscale.json, if present).
func OpenArray(ctx context.Context, st *ObjectStore, path string) (*Array, error) {
	raw, err := st.Get(ctx, path+"/zarr.json")
	if err != nil {
		return nil, wxerr.Wrap(wxerr.NotFound, "array metadata not found: "+path, err)
	}
	meta, err := LoadMetadata(raw)
	if err != nil {
		return nil, wxerr.Wrap(wxerr.CorruptSource, "invalid zarr.json: "+path, err)
	}

	a := &Array{Path: path, store: st, meta: meta}

	if msRaw, err := st.Get(ctx, path+"/.multiscale.json"); err == nil {
		ms, err := LoadMultiscale(msRaw)
		if err != nil {
			return nil, wxerr.Wrap(wxerr.CorruptSource, "invalid .multiscale.json: "+path, err)
		}
		a.multiscale = ms
	}

	return a, nil
}

// Metadata returns the array's parsed zarr.json.
func (a *Array) Metadata() *Metadata { return a.meta }

// Multiscale returns the array's pyramid manifest, or nil if it has none.
func (a *Array) Multiscale() *Multiscale { return a.multiscale }

// Fingerprint returns a stable 64-bit hash of the array's store path, used
// as the cache-key component per spec.md's GLOSSARY entry "Chunk
// fingerprint".
func Fingerprint(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return h.Sum64()
}

// chunkKey formats a chunk's object-store key, "{path}/c/{chunk_y}/{chunk_x}"
// per spec.md §6, generalizing TuSKan-go-zarr/reader.go's v2
// `strconv.Itoa(coord)` joined-by-separator ChunkKey helper to the v3
// "c/" prefix convention.
func (a *Array) chunkKey(chunkY, chunkX int) string {
	return fmt.Sprintf("%s/c/%d/%d", a.Path, chunkY, chunkX)
}

// ChunkDims returns the actual (rows, cols) of chunk (chunkY, chunkX): the
// configured chunk_shape, except at the array's right/bottom edge, where
// spec.md §3 allows a smaller, edge-aligned chunk rather than padding it out
// to the full chunk_shape.
func (a *Array) ChunkDims(chunkY, chunkX int) (rows, cols int) {
	chunkShape := a.meta.ChunkShape()
	ch, cw := chunkShape[0], chunkShape[1]
	shape := a.meta.Shape

	rows = ch
	if remaining := shape[0] - chunkY*ch; remaining > 0 && remaining < ch {
		rows = remaining
	}
	cols = cw
	if remaining := shape[1] - chunkX*cw; remaining > 0 && remaining < cw {
		cols = remaining
	}
	return rows, cols
}

// ReadChunk fetches and decompresses chunk (chunkY, chunkX), returning
// rows*cols float32 values in row-major order, where (rows, cols) is that
// chunk's actual size (see ChunkDims). A missing chunk (not present in the
// object store) decodes to an all-fill_value buffer per spec.md §3's
// chunk-absence invariant, not an error.
func (a *Array) ReadChunk(ctx context.Context, chunkY, chunkX int) ([]float32, error) {
	rows, cols := a.ChunkDims(chunkY, chunkX)
	count := rows * cols

	key := a.chunkKey(chunkY, chunkX)
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		if err == ErrNotFound {
			obslog.Or(a.logger).Debug("chunk absent, synthesizing fill buffer", "chunk_path", key)
			return fillBuffer(count, a.fillValue()), nil
		}
		obslog.Or(a.logger).Warn("chunk fetch failed", "chunk_path", key, "err", err)
		return nil, wxerr.Wrap(wxerr.UpstreamIO, "chunk fetch failed: "+key, err)
	}
	obslog.Or(a.logger).Debug("chunk fetched", "chunk_path", key, "bytes", len(raw))

	codecNames := a.meta.CodecNames()
	decoded := raw
	for i := len(codecNames) - 1; i >= 0; i-- {
		c, err := codec.ByName(codecNames[i])
		if err != nil {
			return nil, wxerr.Wrap(wxerr.UnsupportedTemplate, "chunk codec", err)
		}
		wantSize := count * 4
		if i > 0 {
			// An intermediate stage's decompressed size is unknown ahead of
			// time; only the final stage must equal the float32 element count.
			wantSize = len(decoded)
		}
		decoded, err = c.Decode(decoded, wantSize)
		if err != nil {
			return nil, wxerr.Wrap(wxerr.CorruptSource, "chunk decode failed: "+key, err)
		}
	}

	if len(decoded) != count*4 {
		return nil, wxerr.New(wxerr.CorruptSource,
			fmt.Sprintf("chunk %s: decoded %d bytes, want %d", key, len(decoded), count*4))
	}

	return bytesToFloat32(decoded), nil
}

// FillValue returns the array's configured sentinel for absent/missing
// cells, decoded from zarr.json's fill_value.
func (a *Array) FillValue() float32 {
	return parseFillValue(a.meta.FillValue)
}

func (a *Array) fillValue() float32 {
	return a.FillValue()
}

func fillBuffer(n int, fill float32) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = fill
	}
	return buf
}
