package codec

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// LZ4 is the block-level LZ4 codec (zarr.json codec name "lz4").
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

// Decode decompresses an LZ4 block into a single wantSize-byte buffer and
// validates the result against wantSize; output larger than wantSize is an
// error, and the buffer is not grown.
func (LZ4) Decode(compressed []byte, wantSize int) ([]byte, error) {
	buf := make([]byte, wantSize)
	n, err := lz4.UncompressBlock(compressed, buf)
	if err != nil {
		if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, errors.New("lz4: decompressed chunk is larger than the expected chunk size")
		}
		return nil, err
	}
	if err := checkSize("lz4", n, wantSize); err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (LZ4) Encode(raw []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(raw)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(raw, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible input: lz4 leaves dst empty, store raw.
		return raw, nil
	}
	return dst[:n], nil
}
