package data

import (
	"bytes"
	"fmt"
	"math"

	"github.com/mrjoshuak/go-jpeg2000"

	"github.com/stormcast-io/wxgrid/grib2/internal"
)

// Template40 represents Data Representation Template 5.40: JPEG 2000 Code
// Stream Format. Used by many high-resolution satellite and NWP products
// (GOES-R ABI L2 grids, ECMWF) to pack data as a lossless or near-lossless
// JPEG 2000 codestream instead of a bit-packed integer stream.
//
// Decoding formula is the same as simple packing applied to the decompressed
// sample values: value = (R + X * 2^E) / 10^D.
type Template40 struct {
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	OriginalFieldType  uint8
	CompressionType    uint8 // Table 5.40, 0 = lossless, 1 = lossy
	CompressionRatio   uint8
	NumberOfDataValues uint32
}

// ParseTemplate40 parses Data Representation Template 5.40.
//
// The template data should be 12 bytes.
func ParseTemplate40(numDataValues uint32, tdata []byte) (*Template40, error) {
	if len(tdata) < 12 {
		return nil, fmt.Errorf("template 5.40 requires at least 12 bytes, got %d", len(tdata))
	}

	r := internal.NewReader(tdata)

	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	compressionType, _ := r.Uint8()
	compressionRatio, _ := r.Uint8()

	return &Template40{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		CompressionType:    compressionType,
		CompressionRatio:   compressionRatio,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 40 for Template 5.40.
func (t *Template40) TemplateNumber() int {
	return 40
}

// NumDataValues returns the number of data values.
func (t *Template40) NumDataValues() uint32 {
	return t.NumberOfDataValues
}

// BitsPerValue returns the number of bits per value.
func (t *Template40) BitsPerValue() uint8 {
	return t.NumBitsPerValue
}

// Decode decompresses the JPEG 2000 codestream and applies simple-packing
// scaling to the recovered samples.
//
// If bitmap is provided, it must have length equal to the number of grid
// points. The output will have the same length as the bitmap, with
// undefined values set to NaN where bitmap is false.
func (t *Template40) Decode(packedData []byte, bitmap []bool) ([]float32, error) {
	if t.NumBitsPerValue == 0 {
		count := t.NumberOfDataValues
		if bitmap != nil {
			count = uint32(len(bitmap))
		}
		values := make([]float32, count)
		ref := t.applyScaling(0)
		for i := range values {
			if bitmap != nil && !bitmap[i] {
				values[i] = float32(math.NaN())
			} else {
				values[i] = ref
			}
		}
		return values, nil
	}

	img, err := jpeg2000.Decode(bytes.NewReader(packedData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode JPEG 2000 codestream: %w", err)
	}
	samples := pngSamples(img)

	if bitmap != nil {
		if len(samples) > len(bitmap) {
			return nil, fmt.Errorf("more decoded samples (%d) than bitmap entries (%d)", len(samples), len(bitmap))
		}
		values := make([]float32, len(bitmap))
		idx := 0
		for i := range bitmap {
			if bitmap[i] {
				if idx >= len(samples) {
					return nil, fmt.Errorf("bitmap indicates more valid points than decoded samples available")
				}
				values[i] = t.applyScaling(samples[idx])
				idx++
			} else {
				values[i] = float32(math.NaN())
			}
		}
		return values, nil
	}

	values := make([]float32, len(samples))
	for i, s := range samples {
		values[i] = t.applyScaling(s)
	}
	return values, nil
}

// applyScaling applies the simple-packing scaling formula to a decompressed
// sample value.
//
// Formula: value = (R + X * 2^E) / 10^D
func (t *Template40) applyScaling(sample uint32) float32 {
	value := float64(t.ReferenceValue)
	if sample != 0 {
		value += float64(sample) * math.Pow(2.0, float64(t.BinaryScaleFactor))
	}
	if t.DecimalScaleFactor != 0 {
		value /= math.Pow(10.0, float64(t.DecimalScaleFactor))
	}
	return float32(value)
}

// String returns a human-readable description.
func (t *Template40) String() string {
	return fmt.Sprintf("Template 5.40: JPEG 2000, %d values, %d bits/value, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumBitsPerValue, t.ReferenceValue,
		t.BinaryScaleFactor, t.DecimalScaleFactor)
}
