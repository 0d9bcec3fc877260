package grid

import (
	"fmt"
	"math"

	"github.com/stormcast-io/wxgrid/grib2/internal"
)

// GeostationaryGrid represents Grid Definition Template 3.90: Space view
// perspective or orthographic grid, used by geostationary satellite imagers
// (GOES-16/18 ABI, Himawari AHI) scanning in fixed-grid angle coordinates.
type GeostationaryGrid struct {
	Nx                  uint32 // Number of points along x-axis (east-west scan)
	Ny                  uint32 // Number of points along y-axis (north-south scan)
	LaP                 int32  // Latitude of sub-satellite point (micro-degrees)
	LoP                 int32  // Longitude of sub-satellite point (micro-degrees)
	ResFlags            uint8  // Resolution and component flags
	Dx                  uint32 // Apparent diameter of earth in x direction (grid lengths)
	Dy                  uint32 // Apparent diameter of earth in y direction (grid lengths)
	Xp                  int32  // X-coordinate of sub-satellite point (grid lengths x 1000)
	Yp                  int32  // Y-coordinate of sub-satellite point (grid lengths x 1000)
	ScanningMode        uint8  // Scanning mode flags
	Orientation         int32  // Orientation of the grid (micro-degrees)
	NrAltitude          uint32 // Altitude of camera from earth center, scaled by earth's major axis (x 1e6)
	Xo                  int32  // X-coordinate of origin
	Yo                  int32  // Y-coordinate of origin
}

// ParseGeostationaryGrid parses Grid Definition Template 3.90.
func ParseGeostationaryGrid(data []byte) (*GeostationaryGrid, error) {
	if len(data) < 64 {
		return nil, fmt.Errorf("template 3.90 requires at least 64 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	// Skip shape of earth and related parameters (16 bytes), matching the
	// other grid templates' convention of deferring earth-shape handling.
	r.Skip(16)

	nx, _ := r.Uint32()
	ny, _ := r.Uint32()
	laP, _ := r.Int32()
	loP, _ := r.Int32()
	resFlags, _ := r.Uint8()
	dx, _ := r.Uint32()
	dy, _ := r.Uint32()
	xp, _ := r.Int32()
	yp, _ := r.Int32()
	scanMode, _ := r.Uint8()
	orientation, _ := r.Int32()
	nr, _ := r.Uint32()
	xo, _ := r.Int32()
	yo, _ := r.Int32()

	return &GeostationaryGrid{
		Nx:           nx,
		Ny:           ny,
		LaP:          laP,
		LoP:          loP,
		ResFlags:     resFlags,
		Dx:           dx,
		Dy:           dy,
		Xp:           xp,
		Yp:           yp,
		ScanningMode: scanMode,
		Orientation:  orientation,
		NrAltitude:   nr,
		Xo:           xo,
		Yo:           yo,
	}, nil
}

// TemplateNumber returns 90 for Geostationary (space-view) grids.
func (g *GeostationaryGrid) TemplateNumber() int {
	return 90
}

// NumPoints returns the total number of grid points.
func (g *GeostationaryGrid) NumPoints() int {
	return int(g.Nx * g.Ny)
}

// String returns a human-readable description.
func (g *GeostationaryGrid) String() string {
	return fmt.Sprintf("Geostationary: %dx%d grid, sub-satellite (%.3f, %.3f)",
		g.Nx, g.Ny, float64(g.LaP)/1e6, float64(g.LoP)/1e6)
}

// SubSatellitePoint returns the latitude/longitude of the sub-satellite point
// in degrees.
func (g *GeostationaryGrid) SubSatellitePoint() (lat, lon float64) {
	return float64(g.LaP) / 1e6, float64(g.LoP) / 1e6
}

// scanAngleStep returns the per-pixel scan angle increment in radians,
// derived from the apparent earth diameter (Dx/Dy are grid lengths spanning
// the full apparent disk).
func (g *GeostationaryGrid) scanAngleStep() (dxRad, dyRad float64) {
	const earthRadius = 6378137.0
	altitude := float64(g.NrAltitude) / 1e6 * earthRadius
	// Apparent angular diameter of the earth as seen from the satellite.
	halfAngle := math.Asin(earthRadius / altitude)
	if g.Dx == 0 || g.Dy == 0 {
		return 0, 0
	}
	return 2 * halfAngle / float64(g.Dx), 2 * halfAngle / float64(g.Dy)
}

// Coordinates generates latitude/longitude arrays for all grid points using
// the fixed-grid scan-angle inverse projection (oblate spheroid line-of-sight
// intersection). Points whose line of sight misses the earth (off-disk) are
// encoded as NaN.
func (g *GeostationaryGrid) Coordinates() ([]float32, []float32) {
	const (
		reqM = 6378137.0   // equatorial radius, meters
		rpolM = 6356752.31 // polar radius, meters
	)
	nPoints := int(g.Nx * g.Ny)
	lats := make([]float32, nPoints)
	lons := make([]float32, nPoints)

	subLonRad := float64(g.LoP) / 1e6 * math.Pi / 180.0
	altitude := float64(g.NrAltitude) / 1e6 * reqM
	h := altitude // distance from satellite to earth center

	dxRad, dyRad := g.scanAngleStep()

	idx := 0
	for j := uint32(0); j < g.Ny; j++ {
		y := (float64(j) - float64(g.Yp)/1000.0) * dyRad
		for i := uint32(0); i < g.Nx; i++ {
			x := (float64(i) - float64(g.Xp)/1000.0) * dxRad

			lat, lon, ok := geostationaryInverse(x, y, h, reqM, rpolM, subLonRad)
			if !ok {
				lats[idx] = float32(math.NaN())
				lons[idx] = float32(math.NaN())
			} else {
				lats[idx] = float32(lat)
				lons[idx] = float32(lon)
			}
			idx++
		}
	}

	return lats, lons
}

// geostationaryInverse solves for the geographic latitude/longitude of the
// point where the line of sight at scan angles (x, y) intersects the oblate
// spheroid earth, following the standard GOES-R ABI fixed-grid formulation.
// Returns ok=false when the line of sight misses the earth.
func geostationaryInverse(x, y, h, req, rpol, subLonRad float64) (latDeg, lonDeg float64, ok bool) {
	cosX, sinX := math.Cos(x), math.Sin(x)
	cosY, sinY := math.Cos(y), math.Sin(y)

	a := sinX*sinX + cosX*cosX*(cosY*cosY+(req*req)/(rpol*rpol)*sinY*sinY)
	b := -2 * h * cosX * cosY
	c := h*h - req*req

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}

	sd := math.Sqrt(disc)
	rs := (-b - sd) / (2 * a)

	sx := rs * cosX * cosY
	sy := -rs * sinX
	sz := rs * cosX * sinY

	lat := math.Atan((req * req) / (rpol * rpol) * sz / math.Sqrt((h-sx)*(h-sx)+sy*sy))
	lon := subLonRad - math.Atan(sy/(h-sx))

	return lat * 180.0 / math.Pi, lon * 180.0 / math.Pi, true
}
