// Package style implements the value-to-color mapping of spec.md §4.10: an
// ordered list of color stops plus an optional pre-display numeric
// transform, compiled into a precomputed palette for fast lookup at serve
// time. The forward value->color direction here is the mirror image of
// mmp-vice/pkg/radar/weather.go's reflectivity-color->dBZ kd-tree reverse
// lookup; the same "sorted list of (value, color) samples, interpolate
// between neighbors" shape applies in both directions.
package style

// ColorStop is one control point of a style's color ramp.
type ColorStop struct {
	Value      float64
	R, G, B, A uint8
}

// Transform is a pre-display numeric transform applied to raw grid values
// before they are mapped to color, e.g. Kelvin->Celsius or Pa->hPa.
type Transform func(float64) float64

// Affine returns a Transform computing scale*v + offset.
func Affine(scale, offset float64) Transform {
	return func(v float64) float64 { return v*scale + offset }
}

// KelvinToCelsius converts absolute temperature to Celsius.
func KelvinToCelsius(v float64) float64 { return v - 273.15 }

// PaToHPa converts pressure in pascals to hectopascals.
func PaToHPa(v float64) float64 { return v / 100.0 }

// MToKm converts meters to kilometers.
func MToKm(v float64) float64 { return v / 1000.0 }

// Style is an ordered color ramp over a numeric domain, per spec.md §4.10.
// Stops must be sorted ascending by Value; Domain is [Stops[0].Value,
// Stops[len(Stops)-1].Value].
type Style struct {
	Name      string
	Stops     []ColorStop
	Transform Transform // nil means identity
}

// Domain returns the style's [v0, v1] value range.
func (s *Style) Domain() (v0, v1 float64) {
	return s.Stops[0].Value, s.Stops[len(s.Stops)-1].Value
}

// apply runs the style's pre-display transform, if any.
func (s *Style) apply(v float64) float64 {
	if s.Transform == nil {
		return v
	}
	return s.Transform(v)
}

// ColorAt linearly interpolates the style's color ramp at the (already
// transformed) value v. Values below the first stop clamp to the first
// stop's color; above the last stop clamp to the last.
func (s *Style) ColorAt(v float64) [4]uint8 {
	stops := s.Stops
	if v <= stops[0].Value {
		return stopColor(stops[0])
	}
	last := len(stops) - 1
	if v >= stops[last].Value {
		return stopColor(stops[last])
	}

	for i := 0; i < last; i++ {
		a, b := stops[i], stops[i+1]
		if v >= a.Value && v <= b.Value {
			t := (v - a.Value) / (b.Value - a.Value)
			return lerpColor(a, b, t)
		}
	}
	return stopColor(stops[last])
}

func stopColor(s ColorStop) [4]uint8 {
	return [4]uint8{s.R, s.G, s.B, s.A}
}

func lerpColor(a, b ColorStop, t float64) [4]uint8 {
	return [4]uint8{
		lerpByte(a.R, b.R, t),
		lerpByte(a.G, b.G, t),
		lerpByte(a.B, b.B, t),
		lerpByte(a.A, b.A, t),
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + t*(float64(b)-float64(a)))
}
