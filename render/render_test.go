package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/stormcast-io/wxgrid/style"
)

func TestGradientProducesRGBA(t *testing.T) {
	s := &style.Style{Stops: []style.ColorStop{
		{Value: 0, R: 0, G: 0, B: 0, A: 255},
		{Value: 1, R: 255, G: 255, B: 255, A: 255},
	}}
	p := style.NewPalette(s)
	grid := []float32{0, 1, 0.5, float32(math.NaN())}
	out := Gradient(s, p, grid, 2, 2)
	if len(out) != 16 {
		t.Fatalf("expected 16 bytes, got %d", len(out))
	}
	// Last pixel (NaN) must be fully transparent.
	if out[15] != 0 {
		t.Fatalf("expected alpha 0 for NaN pixel, got %d", out[15])
	}
}

func TestMarchingSquaresFindsMidLevelCrossing(t *testing.T) {
	grid := []float32{0, 0, 10, 10, 0, 0, 10, 10, 0, 0, 10, 10}
	lines := MarchingSquares(grid, 4, 3, []float64{5})
	if len(lines) != 1 {
		t.Fatalf("expected 1 contour line, got %d", len(lines))
	}
	if len(lines[0].Segments) == 0 {
		t.Fatalf("expected at least one segment crossing the 5-level boundary")
	}
}

func TestMarchingSquaresSkipsNaNCells(t *testing.T) {
	grid := []float32{0, 0, float32(math.NaN()), 10, 0, 0, 10, 10}
	lines := MarchingSquares(grid, 4, 2, []float64{5})
	for _, seg := range lines[0].Segments {
		if seg.X0 >= 1 && seg.X0 <= 2 {
			t.Fatalf("expected no segments touching the NaN cell, got %+v", seg)
		}
	}
}

func TestSelectBarbCalm(t *testing.T) {
	b := SelectBarb(2)
	if b.Pennants != 0 || b.FullBarbs != 0 || b.HalfBarb {
		t.Fatalf("expected a bare shaft for calm wind, got %+v", b)
	}
}

func TestSelectBarbFullBarbs(t *testing.T) {
	b := SelectBarb(23) // 20kt bucket: 2 full barbs, no half barb
	if b.FullBarbs < 1 {
		t.Fatalf("expected at least one full barb at 23kt, got %+v", b)
	}
}

func TestSampleWindLatticeSkipsNaN(t *testing.T) {
	u := []float32{1, float32(math.NaN()), 1, 1}
	v := []float32{0, 0, 0, 0}
	samples := SampleWindLattice(u, v, 2, 2, 1)
	for _, s := range samples {
		if s.X == 1.5 && s.Y == 0.5 {
			t.Fatalf("expected the NaN lattice point to be skipped")
		}
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 valid samples out of 4 lattice points, got %d", len(samples))
	}
}

func TestEncodePNGRoundTripsDimensions(t *testing.T) {
	rgba := make([]byte, 4*4*4)
	for i := range rgba {
		rgba[i] = 255
	}
	out, err := EncodePNG(rgba, 4, 4)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty PNG output")
	}
	// PNG magic bytes.
	magic := []byte{0x89, 'P', 'N', 'G'}
	for i, b := range magic {
		if out[i] != b {
			t.Fatalf("missing PNG magic at byte %d", i)
		}
	}
}

func TestDrawLabelsDoesNotPanic(t *testing.T) {
	s := &style.Style{Stops: []style.ColorStop{{Value: 0}, {Value: 1}}}
	canvas := NewRGBACanvas(32, 32)
	pts := []LabelPoint{{X: 4, Y: 12, Value: 42.7}}
	DrawLabels(canvas, pts, s, 1, color.Black)
	if canvas.Bounds().Dx() != 32 {
		t.Fatalf("unexpected canvas width")
	}
}

func TestReprojectThenRenderIsStable(t *testing.T) {
	s := &style.Style{Stops: []style.ColorStop{
		{Value: 0, R: 0, G: 0, B: 0, A: 255},
		{Value: 1, R: 255, G: 255, B: 255, A: 255},
	}}
	p := style.NewPalette(s)
	grid := []float32{0, 1, 0.5, 0.25}

	out1 := Gradient(s, p, grid, 2, 2)
	png1, err := EncodePNG(out1, 2, 2)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	out2 := Gradient(s, p, grid, 2, 2)
	png2, err := EncodePNG(out2, 2, 2)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if len(png1) != len(png2) {
		t.Fatalf("expected byte-identical PNGs across repeated requests")
	}
	for i := range png1 {
		if png1[i] != png2[i] {
			t.Fatalf("PNG bytes diverged at offset %d", i)
		}
	}
}
