package resample

import "math"

// SampleBicubic performs a Catmull-Rom spline interpolation over the 4x4
// pixel stencil surrounding (fx, fy); if any sample in the stencil is NaN,
// it falls back to bilinear for that pixel, per spec.md §4.9.
func SampleBicubic(g Grid, fx, fy float64) float32 {
	x1 := int(math.Floor(fx))
	y1 := int(math.Floor(fy))

	for dy := -1; dy <= 2; dy++ {
		for dx := -1; dx <= 2; dx++ {
			if isNaN32(g.At(x1+dx, y1+dy)) {
				return SampleBilinear(g, fx, fy)
			}
		}
	}

	tx := fx - float64(x1)
	ty := fy - float64(y1)

	var rows [4]float64
	for j := -1; j <= 2; j++ {
		var p [4]float64
		for i := -1; i <= 2; i++ {
			p[i+1] = float64(g.At(x1+i, y1+j))
		}
		rows[j+1] = catmullRom(p[0], p[1], p[2], p[3], tx)
	}

	return float32(catmullRom(rows[0], rows[1], rows[2], rows[3], ty))
}

// catmullRom evaluates the Catmull-Rom spline through p0..p3 at parameter
// t in [0,1], where p1 and p2 are the bracketing samples.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	a0 := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	a1 := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	a2 := -0.5*p0 + 0.5*p2
	a3 := p1
	return ((a0*t+a1)*t+a2)*t + a3
}
