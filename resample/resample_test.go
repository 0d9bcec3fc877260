package resample

import (
	"math"
	"testing"

	"github.com/stormcast-io/wxgrid/projection"
)

func sampleGrid2x2() Grid {
	return Grid{
		Data:   []float32{1, 2, 3, 4},
		Width:  2,
		Height: 2,
	}
}

func TestSampleBilinearCenter(t *testing.T) {
	g := sampleGrid2x2()
	got := Sample(g, 0.5, 0.5, Bilinear)
	if got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
}

func TestSampleBilinearNaNPropagates(t *testing.T) {
	g := sampleGrid2x2()
	g.Data[1] = float32(math.NaN())
	got := Sample(g, 0.5, 0.5, Bilinear)
	if !isNaN32(got) {
		t.Fatalf("expected NaN, got %v", got)
	}
}

func TestSampleBilinearIdentityAtCellCenters(t *testing.T) {
	g := Grid{Data: []float32{10, 20, 30, 40, 50, 60, 70, 80, 90}, Width: 3, Height: 3}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			got := Sample(g, float64(x), float64(y), Bilinear)
			want := g.At(x, y)
			if got != want {
				t.Fatalf("at (%d,%d): got %v want %v", x, y, got, want)
			}
		}
	}
}

func TestSampleNearestOutOfBounds(t *testing.T) {
	g := sampleGrid2x2()
	got := Sample(g, -5, -5, Nearest)
	if !isNaN32(got) {
		t.Fatalf("expected NaN for out-of-bounds nearest, got %v", got)
	}
}

func TestSampleBicubicFallsBackToBilinearOnNaN(t *testing.T) {
	g := Grid{Data: make([]float32, 8*8), Width: 8, Height: 8}
	for i := range g.Data {
		g.Data[i] = float32(i)
	}
	g.Data[3*8+3] = float32(math.NaN())

	gotBicubic := Sample(g, 3.5, 3.5, Bicubic)
	wantBilinear := SampleBilinear(g, 3.5, 3.5)
	if !isNaN32(gotBicubic) || !isNaN32(wantBilinear) {
		t.Fatalf("expected both bicubic and its bilinear fallback to be NaN: bicubic=%v bilinear=%v", gotBicubic, wantBilinear)
	}
}

func TestReprojectMercatorTileCenterValue(t *testing.T) {
	source := sampleGrid2x2()
	sourceCRS := projection.Equirectangular{
		OriginLat: 0, OriginLon: 0,
		StepLat: 1, StepLon: 1,
		Width: 2, Height: 2,
	}
	domain := projection.BBox{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1}

	out := ReprojectMercatorTile(source, domain, sourceCRS, domain, 1, 1, Bilinear)
	if len(out) != 1 {
		t.Fatalf("expected 1 output pixel, got %d", len(out))
	}
	if math.Abs(float64(out[0])-2.5) > 0.05 {
		t.Fatalf("expected ~2.5 at tile center, got %v", out[0])
	}
}

func TestReprojectMercatorTilePropagatesNaN(t *testing.T) {
	source := sampleGrid2x2()
	source.Data[1] = float32(math.NaN())
	sourceCRS := projection.Equirectangular{
		OriginLat: 0, OriginLon: 0,
		StepLat: 1, StepLon: 1,
		Width: 2, Height: 2,
	}
	domain := projection.BBox{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1}

	out := ReprojectMercatorTile(source, domain, sourceCRS, domain, 1, 1, Bilinear)
	if !isNaN32(out[0]) {
		t.Fatalf("expected NaN at tile center once a tap is NaN, got %v", out[0])
	}
}

func TestSampleBicubicSmoothAwayFromNaN(t *testing.T) {
	g := Grid{Data: make([]float32, 8*8), Width: 8, Height: 8}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			g.Data[y*8+x] = float32(x + y)
		}
	}
	got := Sample(g, 3.5, 3.5, Bicubic)
	if got != 7 {
		t.Fatalf("expected exact linear-plane reconstruction 7, got %v", got)
	}
}
