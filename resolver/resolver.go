// Package resolver implements the request resolver of spec.md §4.12: it
// maps (layer, style, crs, bbox, size, time) through the two-tier tile
// cache, the catalog, the grid processor, the resampler, and the style/
// render stages into PNG bytes. No single teacher file owns this
// composition; it is the wiring point for every other package this module
// builds, the way spec.md §2's "Request resolver" row sits atop the whole
// dependency table.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/stormcast-io/wxgrid/catalog"
	"github.com/stormcast-io/wxgrid/gridproc"
	"github.com/stormcast-io/wxgrid/internal/obslog"
	"github.com/stormcast-io/wxgrid/projection"
	"github.com/stormcast-io/wxgrid/render"
	"github.com/stormcast-io/wxgrid/resample"
	"github.com/stormcast-io/wxgrid/store"
	"github.com/stormcast-io/wxgrid/store/cache"
	"github.com/stormcast-io/wxgrid/style"
	"github.com/stormcast-io/wxgrid/tilecache"
	"github.com/stormcast-io/wxgrid/wxerr"
)

// CRS names the output tile's raster projection, per spec.md §1 ("Web
// Mercator or equirectangular").
type CRS string

const (
	CRSMercator        CRS = "mercator"
	CRSEquirectangular CRS = "equirectangular"
)

// RenderMode selects which of spec.md §4.11's renderers produces the tile.
type RenderMode string

const (
	RenderGradient RenderMode = "gradient"
	RenderContour  RenderMode = "contour"
)

// Request is the input to Resolve, per spec.md §4.12's
// {layer, style, crs, bbox, width, height, time?, format}.
type Request struct {
	Model     string
	Parameter string
	Level     string

	StyleID string
	Mode    RenderMode
	Levels  []float64 // contour levels, only used when Mode == RenderContour

	CRS           CRS
	BBox          projection.BBox
	Width, Height int

	// Time is "current" (the catalog's latest entry) or a specific cycle.
	// When UseCurrent is false, ReferenceTime/ForecastHour select one
	// published entry directly.
	UseCurrent    bool
	ReferenceTime time.Time
	ForecastHour  int

	Indexed bool // request indexed-PNG encoding when the style allows it
}

// Resolver wires every serving-path component together per spec.md §4.12's
// ten-step pipeline.
type Resolver struct {
	Catalog     catalog.Catalog
	ObjectStore *store.ObjectStore
	ChunkCache  *cache.ChunkCache
	TileCache   *tilecache.Tiered
	Styles      *StyleRegistry

	Workers          int
	MaxResponseBytes int64 // spec.md §5's response-size estimator cap; 0 disables it

	Logger *slog.Logger // nil logs nothing; set to observe resolution
}

// Resolve runs the full ten-step pipeline and returns encoded tile bytes.
func (r *Resolver) Resolve(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 1: normalize time.
	entry, timeComponent, err := r.normalizeTime(ctx, req)
	if err != nil {
		return nil, err
	}

	// Step 2: canonical cache key.
	key := CacheKey(req.Model, req.StyleID, string(req.CRS), req.BBox, req.Width, req.Height, timeComponent, format(req.Indexed))

	// Steps 3-4 (L1/L2) are inside GetOrBuild; step 5-9 run only on a miss.
	b, err := r.TileCache.GetOrBuild(ctx, key, func(ctx context.Context) ([]byte, error) {
		obslog.Or(r.Logger).Debug("rendering tile", "tile_key", key)
		return r.build(ctx, req, entry)
	})
	if err != nil {
		obslog.Or(r.Logger).Warn("resolve failed", "tile_key", key, "err", err)
	}
	return b, err
}

func (r *Resolver) normalizeTime(ctx context.Context, req Request) (catalog.Entry, string, error) {
	if req.UseCurrent {
		e, err := r.Catalog.Latest(ctx, req.Model, req.Parameter, req.Level)
		if err != nil {
			return catalog.Entry{}, "", err
		}
		return e, "current", nil
	}
	e, err := r.Catalog.Lookup(ctx, req.Model, req.Parameter, req.Level, req.ReferenceTime, req.ForecastHour)
	if err != nil {
		return catalog.Entry{}, "", err
	}
	return e, fmt.Sprintf("%s+%d", req.ReferenceTime.UTC().Format(time.RFC3339), req.ForecastHour), nil
}

func (r *Resolver) build(ctx context.Context, req Request, entry catalog.Entry) ([]byte, error) {
	if r.MaxResponseBytes > 0 {
		estimate := int64(req.Width) * int64(req.Height) * 4
		if estimate > r.MaxResponseBytes {
			return nil, wxerr.New(wxerr.ResponseTooLarge, "estimated tile response exceeds the configured size cap")
		}
	}

	// Step 6: open the array, respecting the multiscale pyramid.
	arr, err := r.openBestLevel(ctx, entry, req.BBox, req.Width, req.Height)
	if err != nil {
		return nil, err
	}

	crs, err := nativeCRS(entry)
	if err != nil {
		return nil, err
	}

	proc := gridproc.NewProcessor(arr, crs, r.ChunkCache, r.Workers)
	proc.SetSentinels(entry.MissingSentinels)
	region, err := proc.ReadRegion(ctx, req.BBox)
	if err != nil {
		return nil, err
	}
	if region.Width == 0 || region.Height == 0 {
		return nil, wxerr.New(wxerr.InvalidRequest, "requested bbox does not overlap the source array")
	}

	// Step 7: resample/reproject into the output raster.
	source := resample.Grid{Data: region.Data, Width: region.Width, Height: region.Height}
	windowed := windowedCRS{inner: crs, col0: float64(region.Col0), row0: float64(region.Row0)}
	outGrid := reprojectTile(source, region.BBox, windowed, req.BBox, req.Width, req.Height, resample.Bilinear, req.CRS)

	// Step 8: colorize (or contour).
	s, err := r.Styles.Get(req.StyleID)
	if err != nil {
		return nil, err
	}

	switch req.Mode {
	case RenderContour:
		return r.renderContour(s, outGrid, req)
	default:
		return r.renderGradient(s, outGrid, req)
	}
}

func (r *Resolver) renderGradient(s *CompiledStyle, grid []float32, req Request) ([]byte, error) {
	if req.Indexed && s.Indexed != nil {
		indices, colors := render.GradientIndexed(s.Style, s.Indexed, grid, req.Width, req.Height)
		return render.EncodeIndexedPNG(indices, colors, req.Width, req.Height)
	}
	rgba := render.Gradient(s.Style, s.Palette, grid, req.Width, req.Height)
	return render.EncodePNG(rgba, req.Width, req.Height)
}

func (r *Resolver) renderContour(s *CompiledStyle, grid []float32, req Request) ([]byte, error) {
	canvas := make([]byte, req.Width*req.Height*4)
	lines := render.MarchingSquares(grid, req.Width, req.Height, req.Levels)
	for _, line := range lines {
		c := s.Style.ColorAt(line.Level)
		render.StrokeContour(canvas, req.Width, req.Height, line.Segments, 1.5, c[0], c[1], c[2], c[3])
	}
	return render.EncodePNG(canvas, req.Width, req.Height)
}

// openBestLevel picks the coarsest pyramid level (spec.md §3's
// levels[0..L], each halving both dimensions) whose resolution still
// covers the requested output tile, per spec.md §4.12 step 6.
func (r *Resolver) openBestLevel(ctx context.Context, entry catalog.Entry, bbox projection.BBox, width, height int) (*store.Array, error) {
	arr, err := store.OpenArray(ctx, r.ObjectStore, entry.StorePath)
	if err != nil {
		return nil, err
	}

	ms := arr.Multiscale()
	if ms == nil || len(ms.Levels) <= 1 {
		return arr, nil
	}

	fracLon := (bbox.MaxLon - bbox.MinLon) / (entry.BBox.MaxLon - entry.BBox.MinLon)
	fracLat := (bbox.MaxLat - bbox.MinLat) / (entry.BBox.MaxLat - entry.BBox.MinLat)

	bestPath := ms.Levels[0].Path
	for _, lvl := range ms.Levels {
		if len(lvl.Shape) != 2 {
			continue
		}
		coveredW := float64(lvl.Shape[1]) * fracLon
		coveredH := float64(lvl.Shape[0]) * fracLat
		if coveredW >= float64(width) && coveredH >= float64(height) {
			bestPath = lvl.Path
			continue
		}
		break
	}

	if bestPath == "" || bestPath == entry.StorePath {
		return arr, nil
	}
	return store.OpenArray(ctx, r.ObjectStore, bestPath)
}

// windowedCRS adapts a full-array projection to a cropped GridRegion's
// local pixel space, so the reprojection wrappers (which expect "source"
// to already be addressed in the same space as sourceCRS) can sample a
// region without seeing the rest of the array.
type windowedCRS struct {
	inner      projection.Projection
	col0, row0 float64
}

func (w windowedCRS) GeoToGrid(latDeg, lonDeg float64) (x, y float64, ok bool) {
	x, y, ok = w.inner.GeoToGrid(latDeg, lonDeg)
	return x - w.col0, y - w.row0, ok
}

func (w windowedCRS) GridToGeo(x, y float64) (latDeg, lonDeg float64) {
	return w.inner.GridToGeo(x+w.col0, y+w.row0)
}

// nativeCRS derives the source array's coordinate transform from its
// catalog entry. Only "equirectangular" is derivable from bbox+shape
// alone (spec.md §3's data model carries no per-entry projection
// parameters beyond bbox/shape); Lambert/Polar-Stereographic/
// Geostationary sources need their own template parameters, which the
// catalog contract spec.md §6 defines does not carry, so they are
// reported as unsupported here rather than guessed.
func nativeCRS(entry catalog.Entry) (projection.Projection, error) {
	switch entry.NativeCRS {
	case "equirectangular", "":
		h, w := entry.Shape[0], entry.Shape[1]
		if h < 1 || w < 1 {
			return nil, wxerr.New(wxerr.InvalidRequest, "equirectangular entry has degenerate shape")
		}
		return projection.Equirectangular{
			OriginLat: entry.BBox.MaxLat,
			OriginLon: entry.BBox.MinLon,
			StepLat:   -(entry.BBox.MaxLat - entry.BBox.MinLat) / float64(h),
			StepLon:   (entry.BBox.MaxLon - entry.BBox.MinLon) / float64(w),
			Width:     w,
			Height:    h,
		}, nil
	default:
		return nil, wxerr.New(wxerr.InvalidRequest, "unsupported native CRS: "+entry.NativeCRS)
	}
}

// reprojectTile dispatches to the Mercator or plain equirectangular
// reprojection wrapper depending on the requested output CRS.
func reprojectTile(source resample.Grid, sourceBBox projection.BBox, sourceCRS projection.Projection, tileBBox projection.BBox, w, h int, method resample.Method, outCRS CRS) []float32 {
	if outCRS == CRSMercator {
		return resample.ReprojectMercatorTile(source, sourceBBox, sourceCRS, tileBBox, w, h, method)
	}
	return reprojectEquirectangularTile(source, sourceBBox, sourceCRS, tileBBox, w, h, method)
}

// reprojectEquirectangularTile is resample_mercator_tile's sibling for a
// plain equirectangular output raster: output pixels map linearly to
// lon/lat (no Mercator-y correction), then through sourceCRS's forward
// transform, per spec.md §1's "Web Mercator or equirectangular" output
// option.
func reprojectEquirectangularTile(source resample.Grid, sourceBBox projection.BBox, sourceCRS projection.Projection, tileBBox projection.BBox, w, h int, method resample.Method) []float32 {
	out := make([]float32, w*h)
	for row := 0; row < h; row++ {
		fy := (float64(row) + 0.5) / float64(h)
		latDeg := tileBBox.MaxLat - fy*(tileBBox.MaxLat-tileBBox.MinLat)

		for col := 0; col < w; col++ {
			fx := (float64(col) + 0.5) / float64(w)
			lonDeg := tileBBox.MinLon + fx*(tileBBox.MaxLon-tileBBox.MinLon)
			idx := row*w + col

			if lonDeg < sourceBBox.MinLon || lonDeg > sourceBBox.MaxLon ||
				latDeg < sourceBBox.MinLat || latDeg > sourceBBox.MaxLat {
				out[idx] = float32(math.NaN())
				continue
			}

			sx, sy, ok := sourceCRS.GeoToGrid(latDeg, lonDeg)
			if !ok {
				out[idx] = float32(math.NaN())
				continue
			}
			out[idx] = resample.Sample(source, sx, sy, method)
		}
	}
	return out
}

func format(indexed bool) string {
	if indexed {
		return "png-indexed"
	}
	return "png"
}

// CacheKey builds the canonical tile cache key of spec.md §6:
// wms:{layer}:{style}:{crs}:{bbox_quantized}:{w}x{h}:{time|"current"}:{format}.
// bbox coordinates are quantized to six decimal digits, per spec.md §3.
func CacheKey(layer, styleID, crs string, bbox projection.BBox, width, height int, timeComponent, format string) string {
	return fmt.Sprintf("wms:%s:%s:%s:%.6f,%.6f,%.6f,%.6f:%dx%d:%s:%s",
		layer, styleID, crs,
		bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat,
		width, height, timeComponent, format)
}
