package data

import (
	"math"
	"testing"
)

func TestTemplate50_Decode_NoBitmap(t *testing.T) {
	tmpl := &Template50{
		ReferenceValue:     10.0,
		BinaryScaleFactor:  0,
		DecimalScaleFactor: 0,
		NumBitsPerValue:    8,
		NumberOfDataValues: 4,
	}

	packed := internalBitPack([]uint32{0, 1, 2, 3}, 8)

	values, err := tmpl.Decode(packed, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(values) != 4 {
		t.Fatalf("expected 4 values, got %d", len(values))
	}
	want := []float32{10.0, 11.0, 12.0, 13.0}
	for i, w := range want {
		if values[i] != w {
			t.Errorf("value[%d] = %v, want %v", i, values[i], w)
		}
	}
}

func TestTemplate50_Decode_WithBitmap(t *testing.T) {
	tmpl := &Template50{
		ReferenceValue:     0,
		BinaryScaleFactor:  0,
		DecimalScaleFactor: 0,
		NumBitsPerValue:    8,
		NumberOfDataValues: 2,
	}
	packed := internalBitPack([]uint32{5, 9}, 8)
	bitmap := []bool{true, false, true}

	values, err := tmpl.Decode(packed, bitmap)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	if values[0] != 5 || values[2] != 9 {
		t.Errorf("unexpected decoded values: %v", values)
	}
	if !math.IsNaN(float64(values[1])) {
		t.Errorf("expected NaN for masked point, got %v", values[1])
	}
}

func TestTemplate50_Decode_ZeroBits(t *testing.T) {
	tmpl := &Template50{
		ReferenceValue:     42,
		NumBitsPerValue:    0,
		NumberOfDataValues: 3,
	}
	values, err := tmpl.Decode(nil, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for _, v := range values {
		if v != 42 {
			t.Errorf("expected constant reference value 42, got %v", v)
		}
	}
}

// internalBitPack packs a slice of values into a big-endian bitstream using
// bitsPerValue bits per entry, matching the GRIB2 simple-packing layout.
func internalBitPack(values []uint32, bitsPerValue int) []byte {
	totalBits := len(values) * bitsPerValue
	out := make([]byte, (totalBits+7)/8)
	bitPos := 0
	for _, v := range values {
		for b := bitsPerValue - 1; b >= 0; b-- {
			bit := (v >> uint(b)) & 1
			byteIdx := bitPos / 8
			shift := 7 - (bitPos % 8)
			out[byteIdx] |= byte(bit) << uint(shift)
			bitPos++
		}
	}
	return out
}
