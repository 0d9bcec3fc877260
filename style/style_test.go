package style

import "testing"

func tempStyle() *Style {
	return &Style{
		Name: "temperature",
		Stops: []ColorStop{
			{Value: -40, R: 0, G: 0, B: 255, A: 255},
			{Value: 0, R: 255, G: 255, B: 255, A: 255},
			{Value: 40, R: 255, G: 0, B: 0, A: 255},
		},
	}
}

func TestPaletteClampsBelowFirstStop(t *testing.T) {
	s := tempStyle()
	p := NewPalette(s)
	got := p.Lookup(-1000, s)
	want := [4]uint8{0, 0, 255, 255}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPaletteClampsAboveLastStop(t *testing.T) {
	s := tempStyle()
	p := NewPalette(s)
	got := p.Lookup(1000, s)
	want := [4]uint8{255, 0, 0, 255}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPaletteNaNIsTransparent(t *testing.T) {
	s := tempStyle()
	p := NewPalette(s)
	got := p.Lookup(float32NaN(), s)
	if got[3] != 0 {
		t.Fatalf("expected alpha 0 for NaN, got %v", got)
	}
}

func TestStyleApplicationScenario(t *testing.T) {
	s := tempStyle()
	p := NewPalette(s)

	inputs := []float32{-40, -20, 0, 20, 40, float32NaN()}
	want := [][4]uint8{
		{0, 0, 255, 255},
		{127, 127, 255, 255},
		{255, 255, 255, 255},
		{255, 127, 127, 255},
		{255, 0, 0, 255},
		{0, 0, 0, 0},
	}

	for i, v := range inputs {
		got := p.Lookup(v, s)
		for c := 0; c < 4; c++ {
			diff := int(got[c]) - int(want[i][c])
			if diff < -1 || diff > 1 {
				t.Errorf("input %v channel %d: got %d, want %d +/-1", v, c, got[c], want[i][c])
			}
		}
	}
}

func TestBuildIndexedWithinLimit(t *testing.T) {
	s := &Style{Stops: []ColorStop{
		{Value: 0, R: 0, G: 0, B: 0, A: 255},
		{Value: 1, R: 0, G: 0, B: 0, A: 255},
	}}
	p := NewPalette(s)
	ip, ok := BuildIndexed(p)
	if !ok {
		t.Fatalf("expected a flat single-color style to be indexable")
	}
	if len(ip.Colors) != 1 {
		t.Fatalf("expected exactly 1 distinct color, got %d", len(ip.Colors))
	}
}

func TestBuildIndexedExceedsLimit(t *testing.T) {
	s := tempStyle() // a smooth ramp resolves to far more than 256 distinct colors
	p := NewPalette(s)
	_, ok := BuildIndexed(p)
	if ok {
		t.Fatalf("expected a smooth gradient to exceed the 256-color indexed limit")
	}
}

func float32NaN() float32 {
	var zero float32 = 0
	return zero / zero
}
