package render

import "math"

// Segment is one line segment of a contour polyline, in pixel coordinates.
type Segment struct {
	X0, Y0, X1, Y1 float64
}

// ContourLine is one target level's collection of segments. Segments are
// not joined into explicit polylines here; marching squares naturally
// produces an unordered segment soup, and the rasterizer below treats each
// segment independently, which is sufficient for stroke rendering.
type ContourLine struct {
	Level    float64
	Segments []Segment
}

// MarchingSquares computes contour segments for grid (row-major, width x
// height f32) at each of levels. Cells touching a NaN grid value are
// skipped, so contours never cross fill regions.
func MarchingSquares(grid []float32, width, height int, levels []float64) []ContourLine {
	lines := make([]ContourLine, len(levels))
	for li, level := range levels {
		lines[li] = ContourLine{Level: level}
		for y := 0; y < height-1; y++ {
			for x := 0; x < width-1; x++ {
				tl := grid[y*width+x]
				tr := grid[y*width+x+1]
				bl := grid[(y+1)*width+x]
				br := grid[(y+1)*width+x+1]
				if isNaN(tl) || isNaN(tr) || isNaN(bl) || isNaN(br) {
					continue
				}
				segs := marchCell(float64(x), float64(y), float64(tl), float64(tr), float64(bl), float64(br), level)
				lines[li].Segments = append(lines[li].Segments, segs...)
			}
		}
	}
	return lines
}

// marchCell classifies one grid cell's corners against level and emits the
// 0, 1, or 2 edge-crossing segments the classic marching-squares case table
// calls for, interpolating the crossing point linearly along each edge.
func marchCell(x, y, tl, tr, bl, br, level float64) []Segment {
	above := func(v float64) bool { return v >= level }

	// 4-bit case index: bit0=tl, bit1=tr, bit2=br, bit3=bl (clockwise).
	idx := 0
	if above(tl) {
		idx |= 1
	}
	if above(tr) {
		idx |= 2
	}
	if above(br) {
		idx |= 4
	}
	if above(bl) {
		idx |= 8
	}
	if idx == 0 || idx == 15 {
		return nil
	}

	top := func() (px, py float64) { return x + lerpT(tl, tr, level), y }
	bottom := func() (px, py float64) { return x + lerpT(bl, br, level), y + 1 }
	left := func() (px, py float64) { return x, y + lerpT(tl, bl, level) }
	rightV := func() (px, py float64) { return x + 1, y + lerpT(tr, br, level) }

	edge := func(a, b func() (float64, float64)) Segment {
		x0, y0 := a()
		x1, y1 := b()
		return Segment{X0: x0, Y0: y0, X1: x1, Y1: y1}
	}

	switch idx {
	case 1, 14:
		return []Segment{edge(top, left)}
	case 2, 13:
		return []Segment{edge(top, rightV)}
	case 3, 12:
		return []Segment{edge(left, rightV)}
	case 4, 11:
		return []Segment{edge(rightV, bottom)}
	case 5:
		return []Segment{edge(top, rightV), edge(left, bottom)}
	case 10:
		return []Segment{edge(top, left), edge(rightV, bottom)}
	case 6, 9:
		return []Segment{edge(top, bottom)}
	case 7, 8:
		return []Segment{edge(left, bottom)}
	}
	return nil
}

// lerpT returns the fractional position in [0,1] along an edge from a
// corner value va to vb at which the edge crosses level.
func lerpT(va, vb, level float64) float64 {
	if vb == va {
		return 0.5
	}
	t := (level - va) / (vb - va)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// StrokeContour rasterizes segs as antialiased lines of the given width
// onto an RGBA canvas (width*height*4 bytes). Each segment is drawn as
// ceil(width)+1 parallel Xiaolin Wu lines swept across the stroke width
// (two lines at offsets -0.5 and +0.5 for width 1).
func StrokeContour(canvas []byte, canvasW, canvasH int, segs []Segment, lineWidth float64, r, g, b, a uint8) {
	half := lineWidth / 2
	for _, s := range segs {
		length := math.Hypot(s.X1-s.X0, s.Y1-s.Y0)
		if length == 0 {
			continue
		}
		// Perpendicular unit offset, swept across the stroke width.
		nx, ny := -(s.Y1 - s.Y0) / length, (s.X1 - s.X0) / length
		steps := int(math.Ceil(lineWidth))
		if steps < 1 {
			steps = 1
		}
		for i := 0; i <= steps; i++ {
			off := -half + float64(i)*(lineWidth/float64(steps))
			wuLine(canvas, canvasW, canvasH, s.X0+nx*off, s.Y0+ny*off, s.X1+nx*off, s.Y1+ny*off, r, g, b, a)
		}
	}
}

// wuLine draws one antialiased line using Xiaolin Wu's algorithm.
func wuLine(canvas []byte, w, h int, x0, y0, x1, y1 float64, r, g, b, a uint8) {
	steep := math.Abs(y1-y0) > math.Abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx := x1 - x0
	dy := y1 - y0
	gradient := 1.0
	if dx != 0 {
		gradient = dy / dx
	}

	plot := func(x, y int, coverage float64) {
		if steep {
			x, y = y, x
		}
		blendPixel(canvas, w, h, x, y, r, g, b, a, coverage)
	}

	y := y0
	for x := int(math.Round(x0)); x <= int(math.Round(x1)); x++ {
		fy := math.Floor(y)
		frac := y - fy
		plot(x, int(fy), 1-frac)
		plot(x, int(fy)+1, frac)
		y += gradient
	}
}

func blendPixel(canvas []byte, w, h, x, y int, r, g, b, a uint8, coverage float64) {
	if x < 0 || y < 0 || x >= w || y >= h || coverage <= 0 {
		return
	}
	if coverage > 1 {
		coverage = 1
	}
	i := (y*w + x) * 4
	alpha := float64(a) * coverage / 255
	canvas[i+0] = blendChannel(canvas[i+0], r, alpha)
	canvas[i+1] = blendChannel(canvas[i+1], g, alpha)
	canvas[i+2] = blendChannel(canvas[i+2], b, alpha)
	canvas[i+3] = uint8(math.Min(255, float64(canvas[i+3])+alpha*255))
}

func blendChannel(dst, src uint8, alpha float64) uint8 {
	return uint8(float64(dst)*(1-alpha) + float64(src)*alpha)
}

func isNaN(v float32) bool {
	return v != v
}
