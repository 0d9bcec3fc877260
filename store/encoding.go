package store

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strings"
)

// bytesToFloat32 reinterprets a little-endian byte buffer as float32
// elements, matching Zarr's default native-endian-little storage for
// data_type "float32".
func bytesToFloat32(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// float32ToBytes is the inverse of bytesToFloat32, used when writing chunks.
func float32ToBytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// parseFillValue interprets a zarr.json fill_value for a float32 array,
// which per the Zarr V3 spec may be a JSON number or one of the special
// strings "NaN", "Infinity", "-Infinity".
func parseFillValue(raw json.RawMessage) float32 {
	if len(raw) == 0 {
		return float32(math.NaN())
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.TrimSpace(s) {
		case "NaN":
			return float32(math.NaN())
		case "Infinity":
			return float32(math.Inf(1))
		case "-Infinity":
			return float32(math.Inf(-1))
		}
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return float32(f)
	}

	return float32(math.NaN())
}
