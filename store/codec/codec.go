// Package codec implements the chunk compression codecs a Zarr-V3 array may
// declare in its zarr.json codecs list.
package codec

import "fmt"

// Codec decompresses a single chunk's on-disk bytes into its decoded form.
// Decoders are content-length-safe: Decode validates that the decompressed
// buffer is exactly wantSize bytes, matching ch*cw*4 for a float32 chunk.
type Codec interface {
	Name() string
	Decode(compressed []byte, wantSize int) ([]byte, error)
	Encode(raw []byte) ([]byte, error)
}

// ByName resolves a codec by its zarr.json configuration name.
func ByName(name string) (Codec, error) {
	switch name {
	case "identity", "":
		return Identity{}, nil
	case "lz4":
		return LZ4{}, nil
	case "zstd":
		return Zstd{}, nil
	case "blosc_lz4", "blosc-lz4":
		return Blosc{Subcodec: "lz4"}, nil
	case "blosc_zstd", "blosc-zstd":
		return Blosc{Subcodec: "zstd"}, nil
	default:
		return nil, fmt.Errorf("unsupported codec: %s", name)
	}
}

func checkSize(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: decompressed size %d does not match expected %d", name, got, want)
	}
	return nil
}
