package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// EncodePNG encodes an RGBA buffer (width*height*4 bytes) as a standard
// non-interlaced IHDR/IDAT/IEND PNG, using Deflate at a fast preset per
// spec.md §4.11.
func EncodePNG(rgba []byte, width, height int) ([]byte, error) {
	img := &image.RGBA{
		Pix:    rgba,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeIndexedPNG encodes a 1-byte-per-pixel index buffer plus its color
// table as a paletted PNG (PLTE chunk + a single IDAT of paletted
// scanlines), per spec.md §4.11's indexed-PNG path.
func EncodeIndexedPNG(indices []byte, colors [][4]uint8, width, height int) ([]byte, error) {
	palette := make(color.Palette, len(colors))
	for i, c := range colors {
		palette[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
	}

	img := image.NewPaletted(image.Rect(0, 0, width, height), palette)
	copy(img.Pix, indices)

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
