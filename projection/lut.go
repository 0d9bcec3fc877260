package projection

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// lutMagic identifies the binary LUT file format.
const lutMagic uint32 = 0x57584C54 // "WXLT"

// TileSize is the fixed raster dimension of a LUT tile record.
const TileSize = 256

// LUTIndex is one precomputed source-grid index pair for a single output
// pixel. Off is true when the pixel falls outside the satellite's visible
// disk.
type LUTIndex struct {
	I, J float32
	Off  bool
}

// LUTTile is a precomputed W×H array of source-grid index pairs for one
// Web-Mercator tile, keyed by (z, x, y).
type LUTTile struct {
	Z, X, Y int
	Indices []LUTIndex // row-major, TileSize*TileSize entries
}

// LUT is a set of precomputed per-tile index arrays for a geostationary
// satellite, built offline by cmd/lutgen and loaded at serve time to turn
// expensive per-pixel inverse reprojection into a table lookup.
type LUT struct {
	SatelliteID string
	DataWidth   int
	DataHeight  int
	MinZoom     int
	MaxZoom     int
	Tiles       map[[3]int]*LUTTile // key: {z, x, y}
}

// NewLUT creates an empty LUT for the given satellite and source-array
// dimensions.
func NewLUT(satelliteID string, dataWidth, dataHeight, minZoom, maxZoom int) *LUT {
	return &LUT{
		SatelliteID: satelliteID,
		DataWidth:   dataWidth,
		DataHeight:  dataHeight,
		MinZoom:     minZoom,
		MaxZoom:     maxZoom,
		Tiles:       make(map[[3]int]*LUTTile),
	}
}

// Add inserts a precomputed tile into the LUT.
func (l *LUT) Add(tile *LUTTile) {
	l.Tiles[[3]int{tile.Z, tile.X, tile.Y}] = tile
}

// Lookup returns the precomputed tile for (z, x, y), if present.
func (l *LUT) Lookup(z, x, y int) (*LUTTile, bool) {
	t, ok := l.Tiles[[3]int{z, x, y}]
	return t, ok
}

// Len returns the number of tiles stored in the LUT.
func (l *LUT) Len() int {
	return len(l.Tiles)
}

// Save persists the LUT in the binary format described by spec.md §4.8:
// a fixed header (satellite id, data dimensions, zoom range, tile count)
// followed by one record per tile (z, x, y, then TileSize*TileSize
// float32 (i, j) pairs, with off-disk pixels written as (-1, -1)).
func (l *LUT) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, lutMagic); err != nil {
		return err
	}

	idBytes := []byte(l.SatelliteID)
	if len(idBytes) > 255 {
		return fmt.Errorf("satellite id too long: %d bytes", len(idBytes))
	}
	if err := bw.WriteByte(byte(len(idBytes))); err != nil {
		return err
	}
	if _, err := bw.Write(idBytes); err != nil {
		return err
	}

	header := []int32{
		int32(l.DataWidth), int32(l.DataHeight),
		int32(l.MinZoom), int32(l.MaxZoom),
		int32(len(l.Tiles)),
	}
	for _, v := range header {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	for _, tile := range l.Tiles {
		if len(tile.Indices) != TileSize*TileSize {
			return fmt.Errorf("tile (%d,%d,%d) has %d indices, want %d",
				tile.Z, tile.X, tile.Y, len(tile.Indices), TileSize*TileSize)
		}
		coords := []int32{int32(tile.Z), int32(tile.X), int32(tile.Y)}
		for _, v := range coords {
			if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
				return err
			}
		}
		for _, idx := range tile.Indices {
			i, j := idx.I, idx.J
			if idx.Off {
				i, j = float32(-1), float32(-1)
			}
			if err := binary.Write(bw, binary.LittleEndian, i); err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, j); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// LoadLUT reads a LUT previously written by Save.
func LoadLUT(r io.Reader) (*LUT, error) {
	br := bufio.NewReader(r)

	var magic uint32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read LUT magic: %w", err)
	}
	if magic != lutMagic {
		return nil, fmt.Errorf("not a LUT file: bad magic 0x%08x", magic)
	}

	idLen, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("failed to read satellite id length: %w", err)
	}
	idBytes := make([]byte, idLen)
	if _, err := io.ReadFull(br, idBytes); err != nil {
		return nil, fmt.Errorf("failed to read satellite id: %w", err)
	}

	var dataWidth, dataHeight, minZoom, maxZoom, tileCount int32
	for _, v := range []*int32{&dataWidth, &dataHeight, &minZoom, &maxZoom, &tileCount} {
		if err := binary.Read(br, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("failed to read LUT header: %w", err)
		}
	}

	lut := NewLUT(string(idBytes), int(dataWidth), int(dataHeight), int(minZoom), int(maxZoom))

	for n := int32(0); n < tileCount; n++ {
		var z, x, y int32
		for _, v := range []*int32{&z, &x, &y} {
			if err := binary.Read(br, binary.LittleEndian, v); err != nil {
				return nil, fmt.Errorf("failed to read tile coordinates: %w", err)
			}
		}

		indices := make([]LUTIndex, TileSize*TileSize)
		for i := range indices {
			var fi, fj float32
			if err := binary.Read(br, binary.LittleEndian, &fi); err != nil {
				return nil, fmt.Errorf("failed to read LUT index: %w", err)
			}
			if err := binary.Read(br, binary.LittleEndian, &fj); err != nil {
				return nil, fmt.Errorf("failed to read LUT index: %w", err)
			}
			if fi < 0 || fj < 0 {
				indices[i] = LUTIndex{Off: true}
			} else {
				indices[i] = LUTIndex{I: fi, J: fj}
			}
		}

		lut.Add(&LUTTile{Z: int(z), X: int(x), Y: int(y), Indices: indices})
	}

	return lut, nil
}

// BuildTile computes the LUT tile for (z, x, y) by inverse-projecting every
// output pixel's geographic coordinate through proj and mapping it onto the
// source array's (I, J) index space.
func BuildTile(proj Geostationary, z, x, y, dataWidth, dataHeight int) *LUTTile {
	bbox := TileBBox(z, x, y)
	indices := make([]LUTIndex, TileSize*TileSize)

	dxRad, dyRad := geoScanAngleStep(proj, dataWidth, dataHeight)

	row := 0
	for py := 0; py < TileSize; py++ {
		lat := bbox.MaxLat + (bbox.MinLat-bbox.MaxLat)*(float64(py)+0.5)/TileSize
		for px := 0; px < TileSize; px++ {
			lon := bbox.MinLon + (bbox.MaxLon-bbox.MinLon)*(float64(px)+0.5)/TileSize

			sx, sy, ok := proj.GeoToGrid(lat, lon)
			if !ok {
				indices[row+px] = LUTIndex{Off: true}
				continue
			}
			i := float32(sx/dxRad + float64(dataWidth)/2)
			j := float32(sy/dyRad + float64(dataHeight)/2)
			if i < 0 || j < 0 || int(i) >= dataWidth || int(j) >= dataHeight {
				indices[row+px] = LUTIndex{Off: true}
				continue
			}
			indices[row+px] = LUTIndex{I: i, J: j}
		}
		row += TileSize
	}

	return &LUTTile{Z: z, X: x, Y: y, Indices: indices}
}

// geoScanAngleStep derives the per-pixel scan angle increment from the
// satellite altitude and source array dimensions, mirroring
// grib2/grid/geostationary.go's scanAngleStep but expressed in terms of the
// pure Geostationary projection type instead of a parsed grid struct.
func geoScanAngleStep(proj Geostationary, width, height int) (dxRad, dyRad float64) {
	halfAngle := math.Asin(geoReq / proj.AltitudeM)
	if width == 0 || height == 0 {
		return 0, 0
	}
	return 2 * halfAngle / float64(width), 2 * halfAngle / float64(height)
}
