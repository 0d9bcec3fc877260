package gridproc

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stormcast-io/wxgrid/projection"
	"github.com/stormcast-io/wxgrid/store"
	"github.com/stormcast-io/wxgrid/store/cache"
)

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func testMetadataJSON(h, w, chunkH, chunkW int) []byte {
	return []byte(`{
		"zarr_format": 3,
		"node_type": "array",
		"shape": [` + itoa(h) + `, ` + itoa(w) + `],
		"data_type": "float32",
		"fill_value": "NaN",
		"chunk_grid": {"name": "regular", "configuration": {"chunk_shape": [` +
		itoa(chunkH) + `, ` + itoa(chunkW) + `]}},
		"chunk_key_encoding": {"name": "default", "configuration": {"separator": "/"}},
		"codecs": [{"name": "identity"}]
	}`)
}

func float32ToBytesLE(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		bits := math.Float32bits(f)
		out[i*4+0] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return out
}

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	ctx := context.Background()
	st, err := store.OpenObjectStore(ctx, "mem://")
	if err != nil {
		t.Fatalf("OpenObjectStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.Put(ctx, "grid/zarr.json", testMetadataJSON(4, 4, 2, 2)); err != nil {
		t.Fatalf("Put zarr.json: %v", err)
	}

	// 4x4 row-major grid of values row*4+col, split into four 2x2 chunks.
	grid := make([]float32, 16)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			grid[row*4+col] = float32(row*4 + col)
		}
	}
	for cy := 0; cy < 2; cy++ {
		for cx := 0; cx < 2; cx++ {
			chunk := make([]float32, 4)
			for oy := 0; oy < 2; oy++ {
				for ox := 0; ox < 2; ox++ {
					chunk[oy*2+ox] = grid[(cy*2+oy)*4+(cx*2+ox)]
				}
			}
			key := "grid/c/" + itoa(cy) + "/" + itoa(cx)
			if err := st.Put(ctx, key, float32ToBytesLE(chunk)); err != nil {
				t.Fatalf("Put chunk %s: %v", key, err)
			}
		}
	}

	arr, err := store.OpenArray(ctx, st, "grid")
	if err != nil {
		t.Fatalf("OpenArray: %v", err)
	}

	crs := projection.Equirectangular{
		OriginLat: 0, OriginLon: 0,
		StepLat: 1, StepLon: 1,
		Width: 4, Height: 4,
	}
	chunkCache := cache.NewChunkCache(1 << 20)
	return NewProcessor(arr, crs, chunkCache, 2)
}

// newEdgeProcessor builds a 5x3 grid chunked 2x2, so the bottom chunk row
// is 1 cell tall and the right chunk column is 1 cell wide: edge-aligned,
// not padded, per spec.md §3.
func newEdgeProcessor(t *testing.T) *Processor {
	t.Helper()
	ctx := context.Background()
	st, err := store.OpenObjectStore(ctx, "mem://")
	if err != nil {
		t.Fatalf("OpenObjectStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	const h, w, chunkH, chunkW = 5, 3, 2, 2
	if err := st.Put(ctx, "edge/zarr.json", testMetadataJSON(h, w, chunkH, chunkW)); err != nil {
		t.Fatalf("Put zarr.json: %v", err)
	}

	grid := make([]float32, h*w)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			grid[row*w+col] = float32(row*w + col)
		}
	}

	nChunkY := (h + chunkH - 1) / chunkH
	nChunkX := (w + chunkW - 1) / chunkW
	for cy := 0; cy < nChunkY; cy++ {
		rows := chunkH
		if remaining := h - cy*chunkH; remaining < chunkH {
			rows = remaining
		}
		for cx := 0; cx < nChunkX; cx++ {
			cols := chunkW
			if remaining := w - cx*chunkW; remaining < chunkW {
				cols = remaining
			}
			chunk := make([]float32, rows*cols)
			for oy := 0; oy < rows; oy++ {
				for ox := 0; ox < cols; ox++ {
					chunk[oy*cols+ox] = grid[(cy*chunkH+oy)*w+(cx*chunkW+ox)]
				}
			}
			key := "edge/c/" + itoa(cy) + "/" + itoa(cx)
			if err := st.Put(ctx, key, float32ToBytesLE(chunk)); err != nil {
				t.Fatalf("Put chunk %s: %v", key, err)
			}
		}
	}

	arr, err := store.OpenArray(ctx, st, "edge")
	if err != nil {
		t.Fatalf("OpenArray: %v", err)
	}

	crs := projection.Equirectangular{
		OriginLat: 0, OriginLon: 0,
		StepLat: 1, StepLon: 1,
		Width: w, Height: h,
	}
	chunkCache := cache.NewChunkCache(1 << 20)
	return NewProcessor(arr, crs, chunkCache, 2)
}

func TestReadCellEdgeChunk(t *testing.T) {
	p := newEdgeProcessor(t)
	ctx := context.Background()

	// (col=2, row=4) falls in the bottom-right 1x1 chunk.
	v, ok, err := p.ReadCell(ctx, 2, 4)
	if err != nil {
		t.Fatalf("ReadCell: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok")
	}
	if v != 14 { // row*3+col = 4*3+2
		t.Fatalf("got %v, want 14", v)
	}
}

func TestReadRegionSpansEdgeChunks(t *testing.T) {
	p := newEdgeProcessor(t)
	ctx := context.Background()

	region, err := p.ReadRegion(ctx, projection.BBox{MinLon: 0, MinLat: 0, MaxLon: 2, MaxLat: 4})
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if region.Width != 3 || region.Height != 5 {
		t.Fatalf("got %dx%d, want 3x5", region.Width, region.Height)
	}
	for row := 0; row < 5; row++ {
		for col := 0; col < 3; col++ {
			want := float32(row*3 + col)
			got := region.Data[row*3+col]
			if got != want {
				t.Errorf("Data[%d,%d] = %v, want %v", row, col, got, want)
			}
		}
	}
}

func TestReadCell(t *testing.T) {
	p := newProcessor(t)
	ctx := context.Background()

	v, ok, err := p.ReadCell(ctx, 3, 2)
	if err != nil {
		t.Fatalf("ReadCell: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok")
	}
	if v != 11 { // row=2, col=3 -> 2*4+3
		t.Fatalf("got %v, want 11", v)
	}
}

func TestReadCellOutOfBounds(t *testing.T) {
	p := newProcessor(t)
	ctx := context.Background()

	_, ok, err := p.ReadCell(ctx, 99, 99)
	if err != nil {
		t.Fatalf("ReadCell: %v", err)
	}
	if ok {
		t.Fatalf("expected out-of-bounds cell to report not-ok")
	}
}

func TestReadPointBilinear(t *testing.T) {
	p := newProcessor(t)
	ctx := context.Background()

	v, ok, err := p.ReadPoint(ctx, 1.5, 1.5)
	if err != nil {
		t.Fatalf("ReadPoint: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok")
	}
	// corners at (col,row) (1,1)=5,(2,1)=6,(1,2)=9,(2,2)=10 -> average 7.5
	if v != 7.5 {
		t.Fatalf("got %v, want 7.5", v)
	}
}

func TestReadRegion(t *testing.T) {
	p := newProcessor(t)
	ctx := context.Background()

	region, err := p.ReadRegion(ctx, projection.BBox{MinLon: 1, MinLat: 1, MaxLon: 2, MaxLat: 2})
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if region.Width != 2 || region.Height != 2 {
		t.Fatalf("got %dx%d, want 2x2", region.Width, region.Height)
	}
}

func TestSetSentinelsTreatedAsMissing(t *testing.T) {
	p := newProcessor(t)
	p.SetSentinels([]float64{5})
	ctx := context.Background()

	_, ok, err := p.ReadCell(ctx, 1, 1)
	require.NoError(t, err)
	require.False(t, ok, "expected a sentinel-masked miss")

	region, err := p.ReadRegion(ctx, projection.BBox{MinLon: 1, MinLat: 1, MaxLon: 2, MaxLat: 2})
	require.NoError(t, err)
	require.True(t, math.IsNaN(float64(region.Data[0])), "want NaN for the sentinel value")
}

func TestCacheStatsReflectReads(t *testing.T) {
	p := newProcessor(t)
	ctx := context.Background()

	if _, _, err := p.ReadCell(ctx, 0, 0); err != nil {
		t.Fatalf("ReadCell: %v", err)
	}
	if _, _, err := p.ReadCell(ctx, 1, 0); err != nil {
		t.Fatalf("ReadCell: %v", err)
	}

	stats := p.CacheStats()
	if stats.Misses < 1 {
		t.Fatalf("expected at least one cache miss, got %+v", stats)
	}
	if stats.Hits < 1 {
		t.Fatalf("expected at least one cache hit from the same chunk, got %+v", stats)
	}
}
