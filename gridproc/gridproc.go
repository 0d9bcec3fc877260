// Package gridproc implements the grid processor of spec.md §4.6: bbox and
// point/cell queries against a chunked store.Array, resolved through a
// chunk cache and a source-CRS projection.Projection. No single teacher
// file owns this composition; it wires store+projection+cache+resample
// together the way TuSKan-go-zarr/reader.go's ReadRegion wires its own
// store+metadata+strides, generalized to the v3 chunk layout and an
// explicit source CRS.
package gridproc

import (
	"context"
	"math"

	"github.com/stormcast-io/wxgrid/projection"
	"github.com/stormcast-io/wxgrid/resample"
	"github.com/stormcast-io/wxgrid/store"
	"github.com/stormcast-io/wxgrid/store/cache"
)

// GridRegion is a dense row-major subset of a source array, assembled from
// the chunks overlapping a requested bbox. Col0/Row0 locate the region's
// top-left corner in the full array's pixel space, so callers can map a
// geographic coordinate resolved through CRS back to an index into Data.
type GridRegion struct {
	Data   []float32
	Width  int
	Height int
	Col0   int
	Row0   int
	BBox   projection.BBox
	CRS    projection.Projection
}

// Local converts full-array fractional pixel coordinates (as returned by
// CRS.GeoToGrid) into coordinates relative to this region's origin.
func (g *GridRegion) Local(x, y float64) (lx, ly float64) {
	return x - float64(g.Col0), y - float64(g.Row0)
}

// Processor answers read_region/read_point/read_cell/prefetch/cache_stats
// queries against one chunked array, per spec.md §4.6.
type Processor struct {
	Array       *store.Array
	CRS         projection.Projection
	cache       *cache.ChunkCache
	fingerprint uint64
	workers     int
	sentinels   []float32
}

// NewProcessor builds a grid processor over array, interpreting its cell
// coordinates via crs, backed by the shared chunk cache. workers bounds
// concurrent chunk fetches for read_region/prefetch.
func NewProcessor(array *store.Array, crs projection.Projection, chunkCache *cache.ChunkCache, workers int) *Processor {
	return &Processor{
		Array:       array,
		CRS:         crs,
		cache:       chunkCache,
		fingerprint: store.Fingerprint(array.Path),
		workers:     workers,
	}
}

// SetSentinels registers additional fill values (beyond NaN and the
// array's own fill_value) that ReadCell/ReadPoint/ReadRegion treat as
// missing, per a catalog entry's per-layer MissingSentinels.
func (p *Processor) SetSentinels(values []float64) {
	p.sentinels = make([]float32, len(values))
	for i, v := range values {
		p.sentinels[i] = float32(v)
	}
}

func (p *Processor) isMissing(v float32) bool {
	if v == p.Array.FillValue() || isNaN(v) {
		return true
	}
	for _, s := range p.sentinels {
		if v == s {
			return true
		}
	}
	return false
}

func (p *Processor) chunkShape() (ch, cw int) {
	shape := p.Array.Metadata().ChunkShape()
	return shape[0], shape[1]
}

func (p *Processor) gridShape() (h, w int) {
	shape := p.Array.Metadata().Shape
	return shape[0], shape[1]
}

// getChunk fetches chunk (cy, cx), consulting the shared cache first.
func (p *Processor) getChunk(ctx context.Context, cy, cx int) ([]float32, error) {
	key := cache.Key{Fingerprint: p.fingerprint, ChunkY: cy, ChunkX: cx}
	if v, ok := p.cache.Get(key); ok {
		return v, nil
	}
	data, err := p.Array.ReadChunk(ctx, cy, cx)
	if err != nil {
		return nil, err
	}
	p.cache.Put(key, data)
	return data, nil
}

// cellChunk splits a (row, col) grid index into its owning chunk coordinate
// and the offset within that chunk, per spec.md §4.6's
// "chunk = floor(cell_index / chunk_dim)" resolution rule.
func cellChunk(index, chunkDim int) (chunk, offset int) {
	chunk = index / chunkDim
	offset = index % chunkDim
	return
}

// ReadCell returns the raw value at (col, row), with no interpolation.
// ok is false if the coordinate is out of bounds or the cell holds the
// array's fill value.
func (p *Processor) ReadCell(ctx context.Context, col, row int) (float32, bool, error) {
	h, w := p.gridShape()
	if row < 0 || col < 0 || row >= h || col >= w {
		return 0, false, nil
	}
	ch, cw := p.chunkShape()
	cy, oy := cellChunk(row, ch)
	cx, ox := cellChunk(col, cw)

	data, err := p.getChunk(ctx, cy, cx)
	if err != nil {
		return 0, false, err
	}
	// The chunk at (cy, cx) may be a smaller, edge-aligned chunk (spec.md
	// §3), so its actual row stride can be narrower than the configured cw.
	_, stride := p.Array.ChunkDims(cy, cx)
	v := data[oy*stride+ox]
	if p.isMissing(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// ReadPoint performs bilinear interpolation over the four grid cells
// surrounding (lon, lat). ok is false if the point falls outside the
// array's domain, or if any of the four corners is the fill value.
func (p *Processor) ReadPoint(ctx context.Context, lon, lat float64) (float32, bool, error) {
	x, y, ok := p.CRS.GeoToGrid(lat, lon)
	if !ok {
		return 0, false, nil
	}

	x0, y0 := int(floor(x)), int(floor(y))
	corners := [4][2]int{{x0, y0}, {x0 + 1, y0}, {x0, y0 + 1}, {x0 + 1, y0 + 1}}
	var vals [4]float32
	for i, c := range corners {
		v, ok, err := p.ReadCell(ctx, c[0], c[1])
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, nil
		}
		vals[i] = v
	}

	g := resample.Grid{Data: vals[:], Width: 2, Height: 2}
	v := resample.SampleBilinear(g, x-float64(x0), y-float64(y0))
	if isNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// ReadRegion assembles a dense subset of the array covering bbox, fetching
// only the chunks that overlap it.
func (p *Processor) ReadRegion(ctx context.Context, bbox projection.BBox) (*GridRegion, error) {
	x0, y0, _ := p.CRS.GeoToGrid(bbox.MinLat, bbox.MinLon)
	x1, y1, _ := p.CRS.GeoToGrid(bbox.MaxLat, bbox.MaxLon)

	colLo, colHi := clampOrder(int(floor(x0)), int(floor(x1)))
	rowLo, rowHi := clampOrder(int(floor(y0)), int(floor(y1)))

	h, w := p.gridShape()
	colLo, colHi = clampRange(colLo, colHi, w-1)
	rowLo, rowHi = clampRange(rowLo, rowHi, h-1)

	width := colHi - colLo + 1
	height := rowHi - rowLo + 1
	if width <= 0 || height <= 0 {
		return &GridRegion{BBox: bbox, CRS: p.CRS}, nil
	}

	ch, cw := p.chunkShape()
	cy0, cy1 := rowLo/ch, rowHi/ch
	cx0, cx1 := colLo/cw, colHi/cw

	reqs := make([]store.ChunkRequest, 0, (cy1-cy0+1)*(cx1-cx0+1))
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			reqs = append(reqs, store.ChunkRequest{ChunkY: cy, ChunkX: cx})
		}
	}

	chunks := make(map[[2]int][]float32, len(reqs))
	results := p.Array.ReadChunks(ctx, reqs, p.workers)
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		chunks[[2]int{r.ChunkY, r.ChunkX}] = r.Data
		p.cache.Put(cache.Key{Fingerprint: p.fingerprint, ChunkY: r.ChunkY, ChunkX: r.ChunkX}, r.Data)
	}

	// A chunk's actual column count only depends on its chunk_x position
	// (right-edge chunks may be narrower), so it's cheap to memoize per cx
	// rather than recomputing it for every cell in the region.
	strides := make(map[int]int, cx1-cx0+1)
	for cx := cx0; cx <= cx1; cx++ {
		_, cols := p.Array.ChunkDims(cy0, cx)
		strides[cx] = cols
	}

	out := make([]float32, width*height)
	for row := rowLo; row <= rowHi; row++ {
		cy, oy := cellChunk(row, ch)
		for col := colLo; col <= colHi; col++ {
			cx, ox := cellChunk(col, cw)
			data := chunks[[2]int{cy, cx}]
			v := data[oy*strides[cx]+ox]
			if p.isMissing(v) {
				v = nan32()
			}
			out[(row-rowLo)*width+(col-colLo)] = v
		}
	}

	return &GridRegion{
		Data:   out,
		Width:  width,
		Height: height,
		Col0:   colLo,
		Row0:   rowLo,
		BBox:   bbox,
		CRS:    p.CRS,
	}, nil
}

// Prefetch is a non-blocking, best-effort hint to populate the chunks
// overlapping each bbox. Errors are swallowed: a failed prefetch degrades
// to a cache miss on the next real read, never an observable failure.
func (p *Processor) Prefetch(bboxes []projection.BBox) {
	go func() {
		ctx := context.Background()
		for _, bbox := range bboxes {
			_, _ = p.ReadRegion(ctx, bbox)
		}
	}()
}

// CacheStats returns the shared chunk cache's observability counters.
func (p *Processor) CacheStats() cache.Stats {
	return p.cache.Stats()
}

func clampOrder(a, b int) (lo, hi int) {
	if a <= b {
		return a, b
	}
	return b, a
}

func clampRange(lo, hi, max int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > max {
		hi = max
	}
	return lo, hi
}

func floor(v float64) float64 {
	i := int64(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return float64(i)
}

func isNaN(v float32) bool {
	return v != v
}

func nan32() float32 {
	return float32(math.NaN())
}
