package resolver

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stormcast-io/wxgrid/catalog"
	"github.com/stormcast-io/wxgrid/projection"
	"github.com/stormcast-io/wxgrid/store"
	"github.com/stormcast-io/wxgrid/store/cache"
	"github.com/stormcast-io/wxgrid/style"
	"github.com/stormcast-io/wxgrid/tilecache"
	"github.com/stormcast-io/wxgrid/wxerr"
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

func newTestResolver(t *testing.T) (*Resolver, catalog.Entry) {
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

	refTime := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	entry := catalog.Entry{
		Model: "gfs", Parameter: "TMP", Level: "2m",
		ReferenceTime: refTime,
		ForecastHour:  0,
		StorePath:     "grid",
		BBox:          projection.BBox{MinLon: 0, MinLat: 0, MaxLon: 4, MaxLat: 4},
		Shape:         [2]int{4, 4},
		ChunkShape:    [2]int{2, 2},
		ValidTime:     refTime,
		Units:         "K",
		NativeCRS:     "equirectangular",
	}

	mem := catalog.NewMemory()
	mem.Put(entry)

	tempStyle := &style.Style{
		Name: "temp",
		Stops: []style.ColorStop{
			{Value: 0, R: 0, G: 0, B: 255, A: 255},
			{Value: 15, R: 255, G: 0, B: 0, A: 255},
		},
	}
	registry := NewStyleRegistry(map[string]*style.Style{"temp": tempStyle})

	r := &Resolver{
		Catalog:     mem,
		ObjectStore: st,
		ChunkCache:  cache.NewChunkCache(1 << 20),
		TileCache:   tilecache.NewTiered(tilecache.NewL1(1<<20), nil, time.Minute),
		Styles:      registry,
		Workers:     2,
	}
	return r, entry
}

func baseRequest(entry catalog.Entry) Request {
	return Request{
		Model: entry.Model, Parameter: entry.Parameter, Level: entry.Level,
		StyleID: "temp",
		Mode:    RenderGradient,
		CRS:     CRSEquirectangular,
		BBox:    projection.BBox{MinLon: 1, MinLat: 1, MaxLon: 2, MaxLat: 2},
		Width:   4, Height: 4,
		ReferenceTime: entry.ReferenceTime,
		ForecastHour:  entry.ForecastHour,
	}
}

func TestResolveProducesPNG(t *testing.T) {
	r, entry := newTestResolver(t)
	ctx := context.Background()

	b, err := r.Resolve(ctx, baseRequest(entry))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")))
}

func TestResolveIdenticalKeyYieldsIdenticalBytes(t *testing.T) {
	r, entry := newTestResolver(t)
	ctx := context.Background()
	req := baseRequest(entry)

	b1, err := r.Resolve(ctx, req)
	require.NoError(t, err)
	b2, err := r.Resolve(ctx, req)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestResolveUsesCurrentSentinel(t *testing.T) {
	r, entry := newTestResolver(t)
	ctx := context.Background()

	req := baseRequest(entry)
	req.UseCurrent = true

	b, err := r.Resolve(ctx, req)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")))
}

func TestResolveUnknownStyleIsNotFound(t *testing.T) {
	r, entry := newTestResolver(t)
	ctx := context.Background()

	req := baseRequest(entry)
	req.StyleID = "does-not-exist"

	_, err := r.Resolve(ctx, req)
	require.Error(t, err)
	require.Equal(t, wxerr.NotFound, wxerr.KindOf(err))
}

func TestResolveRejectsOversizedResponse(t *testing.T) {
	r, entry := newTestResolver(t)
	r.MaxResponseBytes = 16 // far smaller than any real tile
	ctx := context.Background()

	_, err := r.Resolve(ctx, baseRequest(entry))
	require.Error(t, err)
}

func TestCacheKeyQuantizesToSixDecimals(t *testing.T) {
	bbox := projection.BBox{MinLon: 1.0000004, MinLat: 0, MaxLon: 2, MaxLat: 1}
	key := CacheKey("gfs", "temp", "equirectangular", bbox, 256, 256, "current", "png")
	require.Equal(t, "wms:gfs:temp:equirectangular:1.000000,0.000000,2.000000,1.000000:256x256:current:png", key)
}
