package data

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/stormcast-io/wxgrid/grib2/internal"
)

// Template41 represents Data Representation Template 5.41: PNG Image Format,
// used by some NWS/NDFD mosaics that pack a grid as a grayscale PNG stream.
//
// Decoding formula is the same as simple packing applied to the decoded
// pixel values: value = (R + X * 2^E) / 10^D.
type Template41 struct {
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	OriginalFieldType  uint8
	NumberOfDataValues uint32
}

// ParseTemplate41 parses Data Representation Template 5.41.
//
// The template data should be 10 bytes (identical layout to Template 5.0).
func ParseTemplate41(numDataValues uint32, tdata []byte) (*Template41, error) {
	if len(tdata) < 10 {
		return nil, fmt.Errorf("template 5.41 requires at least 10 bytes, got %d", len(tdata))
	}

	r := internal.NewReader(tdata)

	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()

	return &Template41{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 41 for Template 5.41.
func (t *Template41) TemplateNumber() int {
	return 41
}

// NumDataValues returns the number of data values.
func (t *Template41) NumDataValues() uint32 {
	return t.NumberOfDataValues
}

// BitsPerValue returns the number of bits per value.
func (t *Template41) BitsPerValue() uint8 {
	return t.NumBitsPerValue
}

// Decode decodes the PNG image and applies simple-packing scaling to the
// recovered grayscale sample values.
//
// If bitmap is provided, it must have length equal to the number of grid
// points. The output will have the same length as the bitmap, with
// undefined values set to NaN where bitmap is false.
func (t *Template41) Decode(packedData []byte, bitmap []bool) ([]float32, error) {
	img, err := png.Decode(bytes.NewReader(packedData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG image: %w", err)
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

// pngSamples extracts row-major grayscale sample values from a decoded
// image. A 16-bit grayscale image yields its raw 16-bit samples; any other
// image is read through the stdlib image.Image interface, whose
// 16-bit-normalized color values are shifted down to 8 bits. Shared by
// Template41 (PNG) and Template40 (JPEG 2000).
func pngSamples(img image.Image) []uint32 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	samples := make([]uint32, 0, width*height)
	gray16, is16 := img.(*image.Gray16)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if is16 {
				samples = append(samples, uint32(gray16.Gray16At(x, y).Y))
				continue
			}
			gray, _, _, _ := img.At(x, y).RGBA()
			samples = append(samples, uint32(gray>>8))
		}
	}
	return samples
}

// applyScaling applies the simple-packing scaling formula to a decoded pixel
// sample value.
//
// Formula: value = (R + X * 2^E) / 10^D
func (t *Template41) applyScaling(sample uint32) float32 {
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
func (t *Template41) String() string {
	return fmt.Sprintf("Template 5.41: PNG, %d values, %d bits/value, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumBitsPerValue, t.ReferenceValue,
		t.BinaryScaleFactor, t.DecimalScaleFactor)
}
