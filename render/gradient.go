// Package render implements the gradient, contour, wind-barb and numeric
// label renderers of spec.md §4.11, plus PNG encoding. No single teacher
// file owns this domain; gradient.go's per-pixel palette lookup follows
// directly from the style package's precomputed-palette design (spec.md
// §4.10), and png.go's fast-preset Deflate pipeline follows
// mmp-vice/pkg/radar/weather.go's own use of stdlib image/png (there, to
// decode WMS tiles; here, to encode them).
package render

import (
	"github.com/stormcast-io/wxgrid/style"
)

// Gradient renders grid (row-major, width*height f32 values) through
// style's precomputed palette into a width*height*4 RGBA buffer.
func Gradient(s *style.Style, p *style.Palette, grid []float32, width, height int) []byte {
	out := make([]byte, width*height*4)
	for i, v := range grid {
		c := p.Lookup(v, s)
		out[i*4+0] = c[0]
		out[i*4+1] = c[1]
		out[i*4+2] = c[2]
		out[i*4+3] = c[3]
	}
	return out
}

// GradientIndexed renders grid into a width*height 1-byte-per-pixel index
// buffer plus its associated color table, for styles whose palette
// resolves to at most 256 distinct colors.
func GradientIndexed(s *style.Style, ip *style.IndexedPalette, grid []float32, width, height int) (indices []byte, colors [][4]uint8) {
	indices = make([]byte, width*height)
	for i, v := range grid {
		idx, _ := ip.Lookup(v, s)
		indices[i] = idx
	}
	return indices, ip.Colors
}
