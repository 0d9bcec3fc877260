package resample

import (
	"math"

	"github.com/stormcast-io/wxgrid/projection"
)

// ReprojectMercatorTile implements resample_mercator_tile from spec.md §4.9:
// for each of the w*h output pixels of a Web Mercator tile covering
// tileBBox, it computes the output pixel's geographic coordinate, maps it
// into source-array coordinates via sourceCRS's forward transform, and
// interpolates source using method. Points whose geographic coordinate
// falls outside sourceBBox, or that sourceCRS reports as off its domain,
// resolve to NaN.
func ReprojectMercatorTile(source Grid, sourceBBox projection.BBox, sourceCRS projection.Projection, tileBBox projection.BBox, w, h int, method Method) []float32 {
	out := make([]float32, w*h)

	merc := projection.WebMercator{}
	_, yTop, _ := merc.GeoToGrid(tileBBox.MaxLat, tileBBox.MinLon)
	_, yBottom, _ := merc.GeoToGrid(tileBBox.MinLat, tileBBox.MinLon)

	for row := 0; row < h; row++ {
		fy := (float64(row) + 0.5) / float64(h)
		y := yTop + fy*(yBottom-yTop)
		latDeg, _ := merc.GridToGeo(0, y)

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

			out[idx] = Sample(source, sx, sy, method)
		}
	}

	return out
}
