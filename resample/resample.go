// Package resample implements nearest/bilinear/bicubic resampling of
// float32 grids with explicit NaN propagation, per spec.md §4.9. Grounded
// on pspoerri-geotiff2pmtiles/internal/tile/resample.go's
// nearestSampleFloat/bilinearSampleFloat NaN-stencil pattern, generalized
// from that file's fixed-level byte sampling to float32 with unconditional
// NaN propagation instead of a nodata-value comparison.
package resample

import "math"

// Method selects a resampling algorithm.
type Method int

const (
	Nearest Method = iota
	Bilinear
	Bicubic
)

// Grid is a dense row-major float32 raster.
type Grid struct {
	Data   []float32
	Width  int
	Height int
}

// At returns the value at integer pixel (x, y), or NaN if out of bounds.
func (g Grid) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return float32(math.NaN())
	}
	return g.Data[y*g.Width+x]
}

// Sample resamples g at fractional pixel coordinates (fx, fy) using method.
func Sample(g Grid, fx, fy float64, method Method) float32 {
	switch method {
	case Nearest:
		return SampleNearest(g, fx, fy)
	case Bicubic:
		return SampleBicubic(g, fx, fy)
	default:
		return SampleBilinear(g, fx, fy)
	}
}
