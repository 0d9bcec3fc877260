package render

import "math"

// BarbGlyph describes one rasterizable wind-barb shape: a shaft plus a
// count of full barbs, half barbs, and pennants, selected by speed bucket
// per spec.md §4.11.
type BarbGlyph struct {
	SpeedLoKt, SpeedHiKt float64
	Pennants             int
	FullBarbs            int
	HalfBarb             bool
}

// barbBuckets are the standard meteorological wind-barb speed buckets in
// knots: 0 pennants/barbs below 5kt (calm, drawn as a bare shaft), then one
// full barb per 10kt, a half barb for the remaining 5kt, and a pennant per
// 50kt.
var barbBuckets = buildBarbBuckets()

func buildBarbBuckets() []BarbGlyph {
	var out []BarbGlyph
	for lo := 0.0; lo < 200; lo += 5 {
		hi := lo + 5
		knots := lo
		pennants := int(knots / 50)
		knots -= float64(pennants) * 50
		fullBarbs := int(knots / 10)
		knots -= float64(fullBarbs) * 10
		half := knots >= 5
		out = append(out, BarbGlyph{SpeedLoKt: lo, SpeedHiKt: hi, Pennants: pennants, FullBarbs: fullBarbs, HalfBarb: half})
	}
	return out
}

// SelectBarb returns the glyph bucket for a wind speed in knots.
func SelectBarb(speedKt float64) BarbGlyph {
	for _, b := range barbBuckets {
		if speedKt >= b.SpeedLoKt && speedKt < b.SpeedHiKt {
			return b
		}
	}
	return barbBuckets[len(barbBuckets)-1]
}

// WindSample is one lattice point's wind vector in source grid units
// (typically m/s).
type WindSample struct {
	X, Y   float64 // pixel coordinates of the lattice center
	Speed  float64 // sqrt(u^2 + v^2), same units as U/V
	DirRad float64 // atan2(-u, -v): meteorological "from" direction
}

// SampleWindLattice walks a pixel-spaced lattice over aligned u/v component
// grids (row-major, width x height), computing speed/direction at each
// lattice center from the nearest grid cell, per spec.md §4.11.
func SampleWindLattice(u, v []float32, width, height int, spacingPx float64) []WindSample {
	var out []WindSample
	for py := spacingPx / 2; py < float64(height); py += spacingPx {
		for px := spacingPx / 2; px < float64(width); px += spacingPx {
			gx := int(px)
			gy := int(py)
			if gx < 0 || gy < 0 || gx >= width || gy >= height {
				continue
			}
			uu := u[gy*width+gx]
			vv := v[gy*width+gx]
			if isNaN(uu) || isNaN(vv) {
				continue
			}
			speed := math.Hypot(float64(uu), float64(vv))
			dir := math.Atan2(float64(-uu), float64(-vv))
			out = append(out, WindSample{X: px, Y: py, Speed: speed, DirRad: dir})
		}
	}
	return out
}

// msToKt converts meters/second to knots.
const msToKt = 1.9438444924406

// RasterizeBarb draws one wind-barb glyph at sample's location, rotated by
// its direction, onto canvas (width*height*4 RGBA bytes).
func RasterizeBarb(canvas []byte, canvasW, canvasH int, sample WindSample, shaftLen float64, r, g, b, a uint8) {
	glyph := SelectBarb(sample.Speed * msToKt)
	cosT, sinT := math.Cos(sample.DirRad), math.Sin(sample.DirRad)

	rotate := func(dx, dy float64) (float64, float64) {
		// Rotate the glyph's local (shaft pointing +y) frame by DirRad,
		// then translate to the sample's lattice position.
		x := dx*cosT - dy*sinT
		y := dx*sinT + dy*cosT
		return sample.X + x, sample.Y + y
	}

	x0, y0 := rotate(0, 0)
	x1, y1 := rotate(0, shaftLen)
	wuLine(canvas, canvasW, canvasH, x0, y0, x1, y1, r, g, b, a)

	barbSpacing := shaftLen / 5
	pos := shaftLen
	for i := 0; i < glyph.Pennants; i++ {
		bx0, by0 := rotate(0, pos)
		bx1, by1 := rotate(shaftLen/3, pos-barbSpacing/2)
		bx2, by2 := rotate(0, pos-barbSpacing)
		wuLine(canvas, canvasW, canvasH, bx0, by0, bx1, by1, r, g, b, a)
		wuLine(canvas, canvasW, canvasH, bx1, by1, bx2, by2, r, g, b, a)
		pos -= barbSpacing
	}
	for i := 0; i < glyph.FullBarbs; i++ {
		bx0, by0 := rotate(0, pos)
		bx1, by1 := rotate(shaftLen/3, pos+barbSpacing/2)
		wuLine(canvas, canvasW, canvasH, bx0, by0, bx1, by1, r, g, b, a)
		pos -= barbSpacing
	}
	if glyph.HalfBarb {
		bx0, by0 := rotate(0, pos)
		bx1, by1 := rotate(shaftLen/6, pos+barbSpacing/4)
		wuLine(canvas, canvasW, canvasH, bx0, by0, bx1, by1, r, g, b, a)
	}
}
