package style

// IndexedPalette is a compact 1-byte-per-pixel palette, used when a
// style's rendered domain resolves to at most 256 distinct colors (most
// "banded"/discrete styles), per spec.md §4.10's indexed-vs-RGBA choice.
type IndexedPalette struct {
	Colors  [][4]uint8 // len <= 256
	indexOf [PaletteSize]uint8
	v0, v1  float64
}

// BuildIndexed attempts to compress p into an indexed palette. ok is false
// if p's RGBA table resolves to more than 256 distinct colors, in which
// case callers must fall back to full RGBA rendering.
func BuildIndexed(p *Palette) (*IndexedPalette, bool) {
	seen := make(map[[4]uint8]uint8)
	ip := &IndexedPalette{v0: p.v0, v1: p.v1}

	for i, c := range p.entries {
		idx, ok := seen[c]
		if !ok {
			if len(ip.Colors) >= 256 {
				return nil, false
			}
			idx = uint8(len(ip.Colors))
			seen[c] = idx
			ip.Colors = append(ip.Colors, c)
		}
		ip.indexOf[i] = idx
	}
	return ip, true
}

// Lookup maps a raw grid value to a palette index and its resolved color.
// NaN maps to index 0 with a fully transparent color override — callers
// that need a distinguishable "no data" index should reserve Colors[0]
// for transparency when building their style's stops accordingly.
func (ip *IndexedPalette) Lookup(v float32, s *Style) (index uint8, color [4]uint8) {
	if isNaN(v) {
		return 0, [4]uint8{0, 0, 0, 0}
	}
	tv := s.apply(float64(v))
	idx := (tv - ip.v0) / (ip.v1 - ip.v0) * float64(PaletteSize-1)
	idx = clamp(idx, 0, float64(PaletteSize-1))
	i := ip.indexOf[int(idx+0.5)]
	return i, ip.Colors[i]
}
