package projection

import "math"

// earthRadiusPolar matches the spherical earth radius grib2/grid's Polar
// Stereographic parser assumes (WGS84 authalic sphere approximation).
const earthRadiusPolar = 6371229.0

// PolarStereographic is a polar stereographic projection, valid for either
// hemisphere, following the USGS GCTP spherical formulas used by
// grib2/grid/polar_stereographic.go's inverse projection.
type PolarStereographic struct {
	OrientationLon float64 // longitude parallel to the y-axis (degrees)
	RefLat         float64 // standard parallel at which Dx/Dy are specified (degrees)
	North          bool    // true for north-pole projections, false for south
}

func (p PolarStereographic) scaleTerms() (mcs, tcs float64) {
	refRad := math.Abs(p.RefLat) * math.Pi / 180.0
	mcs = math.Cos(refRad)
	tcs = math.Tan((math.Pi/2.0 - refRad) / 2.0)
	return
}

// GeoToGrid projects lat/lon degrees to (x, y) meters relative to the pole,
// using the forward USGS GCTP spherical polar stereographic formula.
// Always ok=true within a hemisphere; the projection is singular only
// exactly at the antipodal pole, which callers never query.
func (p PolarStereographic) GeoToGrid(latDeg, lonDeg float64) (x, y float64, ok bool) {
	mcs, tcs := p.scaleTerms()
	latRad := latDeg * math.Pi / 180.0
	theta := (lonDeg - p.OrientationLon) * math.Pi / 180.0

	if p.North {
		t := math.Tan((math.Pi/2.0 - latRad) / 2.0)
		rho := earthRadiusPolar * mcs * t / tcs
		x = rho * math.Sin(theta)
		y = -rho * math.Cos(theta)
	} else {
		t := math.Tan((math.Pi/2.0 + latRad) / 2.0)
		rho := earthRadiusPolar * mcs * t / tcs
		x = rho * math.Sin(theta)
		y = rho * math.Cos(theta)
	}
	return x, y, true
}

// GridToGeo inverts the polar stereographic projection from meters relative
// to the pole back to lat/lon degrees.
func (p PolarStereographic) GridToGeo(x, y float64) (latDeg, lonDeg float64) {
	mcs, tcs := p.scaleTerms()
	rho := math.Sqrt(x*x + y*y)

	if rho == 0 {
		if p.North {
			return 90, 0
		}
		return -90, 0
	}

	ts := rho * tcs / (earthRadiusPolar * mcs)
	var lat, theta float64
	if p.North {
		lat = math.Pi/2.0 - 2.0*math.Atan(ts)
		theta = math.Atan2(x, -y)
	} else {
		lat = -math.Pi/2.0 + 2.0*math.Atan(ts)
		theta = math.Atan2(x, y)
	}

	lon := p.OrientationLon + theta*180.0/math.Pi
	return lat * 180.0 / math.Pi, normalizeLonDeg(lon)
}
