package resample

import "math"

// SampleBilinear performs four-tap bilinear interpolation; if any tap with
// non-zero weight is NaN (including out-of-bounds taps), the result is NaN.
// A zero fractional offset collapses that axis onto the x0/y0 column or row,
// so sampling exactly at a cell center returns that cell's value.
func SampleBilinear(g Grid, fx, fy float64) float32 {
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1, y1 := x0+1, y0+1

	dx := fx - math.Floor(fx)
	dy := fy - math.Floor(fy)
	if dx == 0 {
		x1 = x0
	}
	if dy == 0 {
		y1 = y0
	}

	v00 := g.At(x0, y0)
	v10 := g.At(x1, y0)
	v01 := g.At(x0, y1)
	v11 := g.At(x1, y1)

	if isNaN32(v00) || isNaN32(v10) || isNaN32(v01) || isNaN32(v11) {
		return float32(math.NaN())
	}

	top := lerp(float64(v00), float64(v10), dx)
	bot := lerp(float64(v01), float64(v11), dx)
	return float32(lerp(top, bot, dy))
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func isNaN32(v float32) bool {
	return v != v
}
