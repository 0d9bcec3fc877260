package resample

import "math"

// SampleNearest rounds to the nearest pixel index; out-of-bounds returns NaN.
func SampleNearest(g Grid, fx, fy float64) float32 {
	x := int(math.Floor(fx + 0.5))
	y := int(math.Floor(fy + 0.5))
	return g.At(x, y)
}
