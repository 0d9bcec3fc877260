// Package main provides a command-line tool that precomputes geostationary
// satellite reprojection lookup tables and saves them as .lut files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stormcast-io/wxgrid/projection"
)

var (
	outputFlag     = flag.String("o", "./data/luts", "Output directory for LUT files")
	maxZoomFlag    = flag.Int("z", 7, "Maximum zoom level to compute")
	satellitesFlag = flag.String("s", "goes16,goes18", "Comma-separated satellite list")
)

// satelliteGeometry holds the fixed-grid projection parameters for a
// supported GOES satellite's CONUS sector.
type satelliteGeometry struct {
	proj       projection.Geostationary
	dataWidth  int
	dataHeight int
}

var satellites = map[string]satelliteGeometry{
	"goes16": {
		proj:       projection.Geostationary{SubLonDeg: -75.2, AltitudeM: 42164160.0},
		dataWidth:  5000,
		dataHeight: 3000,
	},
	"goes18": {
		proj:       projection.Geostationary{SubLonDeg: -137.0, AltitudeM: 42164160.0},
		dataWidth:  5000,
		dataHeight: 3000,
	},
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Precompute geostationary satellite reprojection LUTs for fast tile rendering.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -o ./data/luts                  # Generate both satellites, zoom 0-7\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -s goes16 -z 5                  # Just goes16, zoom 0-5\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOutput files:\n")
		fmt.Fprintf(os.Stderr, "  <output>/goes16_conus_z0-<max-zoom>.lut\n")
		fmt.Fprintf(os.Stderr, "  <output>/goes18_conus_z0-<max-zoom>.lut\n")
	}

	flag.Parse()

	if err := os.MkdirAll(*outputFlag, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	names := strings.Split(*satellitesFlag, ",")

	fmt.Println("GOES Projection LUT Generator")
	fmt.Println("==============================")
	fmt.Printf("Output directory: %s\n", *outputFlag)
	fmt.Printf("Max zoom level: %d\n", *maxZoomFlag)
	fmt.Printf("Satellites: %v\n\n", names)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if err := generateLUT(name, *maxZoomFlag, *outputFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating LUT for %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	fmt.Println("\nDone! LUT files are ready for deployment.")
}

func generateLUT(satellite string, maxZoom int, outputDir string) error {
	geom, ok := satellites[satellite]
	if !ok {
		return fmt.Errorf("unknown satellite: %s", satellite)
	}

	fmt.Printf("Generating LUT for %s...\n", satellite)
	start := time.Now()

	lut := projection.NewLUT(satellite, geom.dataWidth, geom.dataHeight, 0, maxZoom)

	for z := 0; z <= maxZoom; z++ {
		n := 1 << uint(z)
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				tile := projection.BuildTile(geom.proj, z, x, y, geom.dataWidth, geom.dataHeight)
				if tileHasVisiblePixel(tile) {
					lut.Add(tile)
				}
			}
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("  Computed %d tiles in %.2fs\n", lut.Len(), elapsed.Seconds())

	filename := fmt.Sprintf("%s_conus_z0-%d.lut", satellite, maxZoom)
	filepath := filepath.Join(outputDir, filename)

	f, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	fmt.Printf("  Saving to %s...\n", filepath)
	if err := lut.Save(f); err != nil {
		return fmt.Errorf("failed to save LUT: %w", err)
	}

	info, err := f.Stat()
	if err == nil {
		fmt.Printf("  Saved %s (%.2f MB)\n", filename, float64(info.Size())/1024.0/1024.0)
	}

	fmt.Printf("  Statistics: %d tiles\n\n", lut.Len())
	return nil
}

// tileHasVisiblePixel reports whether at least one pixel in the tile falls
// within the satellite's visible disk, so fully off-disk tiles are skipped
// and never take up space in the saved LUT.
func tileHasVisiblePixel(tile *projection.LUTTile) bool {
	for _, idx := range tile.Indices {
		if !idx.Off {
			return true
		}
	}
	return false
}
