package codec

import (
	"fmt"

	blosc "github.com/mrjoshuak/go-blosc"
)

// shuffleByteShuffle selects Blosc's byte-level shuffle filter, the default
// used for float32 chunk data (it exposes cross-element byte correlation
// that the entropy stage of either sub-codec compresses well).
const shuffleByteShuffle = 1

// Blosc wraps the Blosc meta-compressor, which itself delegates to one of
// several internal codecs (here: lz4 or zstd) after an optional byte-shuffle
// filter pass. zarr.json spells these "blosc_lz4"/"blosc_zstd".
type Blosc struct {
	Subcodec string // "lz4" or "zstd"
	Level    int    // 1..9, 0 defaults to the package's standard level
}

func (b Blosc) Name() string { return "blosc_" + b.Subcodec }

func (Blosc) Decode(compressed []byte, wantSize int) ([]byte, error) {
	out, err := blosc.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("blosc decompress failed: %w", err)
	}
	if err := checkSize("blosc", len(out), wantSize); err != nil {
		return nil, err
	}
	return out, nil
}

func (b Blosc) Encode(raw []byte) ([]byte, error) {
	level := b.Level
	if level <= 0 {
		level = 5
	}
	out, err := blosc.Compress(raw, blosc.Options{
		TypeSize: 4, // float32 elements
		Level:    level,
		Shuffle:  shuffleByteShuffle,
		Cname:    b.Subcodec,
	})
	if err != nil {
		return nil, fmt.Errorf("blosc compress failed: %w", err)
	}
	return out, nil
}
