package style

import "math"

// PaletteSize is the number of precomputed RGBA entries in a Palette, per
// spec.md §4.10.
const PaletteSize = 4096

// Palette is a precomputed array of PaletteSize RGBA entries covering a
// style's domain uniformly, so per-pixel rendering reduces to an index
// computation instead of a ramp search.
type Palette struct {
	entries [PaletteSize][4]uint8
	v0, v1  float64
}

// NewPalette precomputes style's color ramp (after its pre-display
// transform) into a uniform lookup table over its domain.
func NewPalette(s *Style) *Palette {
	v0, v1 := s.Domain()
	// The ramp stops are expressed in transformed units, so the stop domain
	// is already the palette's domain and is not transformed again.

	p := &Palette{v0: v0, v1: v1}
	for i := 0; i < PaletteSize; i++ {
		t := float64(i) / float64(PaletteSize-1)
		v := v0 + t*(v1-v0)
		p.entries[i] = s.ColorAt(v)
	}
	return p
}

// Lookup maps a raw (untransformed) grid value to an RGBA color. NaN maps
// to fully transparent; values outside the domain clamp to the nearest
// palette entry.
func (p *Palette) Lookup(v float32, s *Style) [4]uint8 {
	if isNaN(v) {
		return [4]uint8{0, 0, 0, 0}
	}
	tv := s.apply(float64(v))
	idx := (tv - p.v0) / (p.v1 - p.v0) * float64(PaletteSize-1)
	idx = clamp(idx, 0, float64(PaletteSize-1))
	return p.entries[int(idx+0.5)]
}

// LookupTransformed is like Lookup but takes a value already in the
// style's transformed units, skipping the per-pixel Transform call. Used by
// render paths that have already batch-transformed a region.
func (p *Palette) LookupTransformed(tv float64) [4]uint8 {
	if math.IsNaN(tv) {
		return [4]uint8{0, 0, 0, 0}
	}
	idx := (tv - p.v0) / (p.v1 - p.v0) * float64(PaletteSize-1)
	idx = clamp(idx, 0, float64(PaletteSize-1))
	return p.entries[int(idx+0.5)]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isNaN(v float32) bool {
	return v != v
}
