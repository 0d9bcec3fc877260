package data

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func TestTemplate41_Decode(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Gray16{Y: 0})
	img.Set(1, 0, color.Gray16{Y: 100})
	img.Set(0, 1, color.Gray16{Y: 200})
	img.Set(1, 1, color.Gray16{Y: 300})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}

	tmpl := &Template41{
		ReferenceValue:     0,
		BinaryScaleFactor:  0,
		DecimalScaleFactor: 0,
		NumBitsPerValue:    16,
		NumberOfDataValues: 4,
	}

	values, err := tmpl.Decode(buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(values) != 4 {
		t.Fatalf("expected 4 values, got %d", len(values))
	}
	want := []float32{0, 100, 200, 300}
	for i, w := range want {
		if values[i] != w {
			t.Errorf("value[%d] = %v, want %v", i, values[i], w)
		}
	}
}

func TestTemplate41_Decode_WithBitmap(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.Gray16{Y: 50})
	img.Set(0, 1, color.Gray16{Y: 150})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}

	tmpl := &Template41{NumBitsPerValue: 16, NumberOfDataValues: 2}
	bitmap := []bool{true, false, true}

	values, err := tmpl.Decode(buf.Bytes(), bitmap)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	if values[0] != 50 || values[2] != 150 {
		t.Errorf("unexpected decoded values: %v", values)
	}
	if !math.IsNaN(float64(values[1])) {
		t.Errorf("expected NaN for masked point, got %v", values[1])
	}
}
