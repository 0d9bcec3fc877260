package store

import (
	"context"
	"testing"
)

func testMetadataJSON(chunkH, chunkW int) []byte {
	return []byte(`{
		"zarr_format": 3,
		"node_type": "array",
		"shape": [4, 4],
		"data_type": "float32",
		"fill_value": "NaN",
		"chunk_grid": {"name": "regular", "configuration": {"chunk_shape": [` +
		itoa(chunkH) + `, ` + itoa(chunkW) + `]}},
		"chunk_key_encoding": {"name": "default", "configuration": {"separator": "/"}},
		"codecs": [{"name": "identity"}]
	}`)
}

// testMetadataJSONShape builds metadata for an array whose shape isn't an
// exact multiple of its chunk_shape, so its rightmost/bottommost chunks are
// edge-aligned rather than full-size.
func testMetadataJSONShape(h, w, chunkH, chunkW int) []byte {
	return []byte(`{
		"zarr_format": 3,
		"node_type": "array",
		"shape": [` + itoa(h) + `, ` + itoa(w) + `],
		"data_type": "float32",
		"fill_value": "NaN",
		"chunk_grid": {"name": "regular", "configuration": {"chunk_shape": [` +
		itoa(chunkH) + `, ` + itoa(chunkW) + `]}},
		"chunk_key_encoding": {"name": "default", "configuration": {"separator": "/"}},
		"codecs": [{"name": "identity"}]
	}`)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestArrayReadChunk(t *testing.T) {
	ctx := context.Background()
	st, err := OpenObjectStore(ctx, "mem://")
	if err != nil {
		t.Fatalf("OpenObjectStore: %v", err)
	}
	defer st.Close()

	if err := st.Put(ctx, "test/zarr.json", testMetadataJSON(2, 2)); err != nil {
		t.Fatalf("Put zarr.json: %v", err)
	}

	chunk := []float32{1, 2, 3, 4}
	if err := st.Put(ctx, "test/c/0/0", float32ToBytes(chunk)); err != nil {
		t.Fatalf("Put chunk: %v", err)
	}

	arr, err := OpenArray(ctx, st, "test")
	if err != nil {
		t.Fatalf("OpenArray: %v", err)
	}

	got, err := arr.ReadChunk(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len(got) = %d, want 4", len(got))
	}
	for i, v := range chunk {
		if got[i] != v {
			t.Errorf("got[%d] = %v, want %v", i, got[i], v)
		}
	}
}

func TestArrayReadChunkMissingIsFillValue(t *testing.T) {
	ctx := context.Background()
	st, err := OpenObjectStore(ctx, "mem://")
	if err != nil {
		t.Fatalf("OpenObjectStore: %v", err)
	}
	defer st.Close()

	if err := st.Put(ctx, "test2/zarr.json", testMetadataJSON(2, 2)); err != nil {
		t.Fatalf("Put zarr.json: %v", err)
	}

	arr, err := OpenArray(ctx, st, "test2")
	if err != nil {
		t.Fatalf("OpenArray: %v", err)
	}

	got, err := arr.ReadChunk(ctx, 5, 5)
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	for _, v := range got {
		if v == v { // not NaN
			t.Errorf("expected NaN fill value, got %v", v)
		}
	}
}

func TestArrayReadChunkEdgeIsSmaller(t *testing.T) {
	ctx := context.Background()
	st, err := OpenObjectStore(ctx, "mem://")
	if err != nil {
		t.Fatalf("OpenObjectStore: %v", err)
	}
	defer st.Close()

	// A 5x3 array chunked 2x2 has a bottom-edge row of 1-row chunks and a
	// right-edge column of 1-col chunks, per spec.md §3's edge-aligned,
	// not-padded invariant.
	if err := st.Put(ctx, "edge/zarr.json", testMetadataJSONShape(5, 3, 2, 2)); err != nil {
		t.Fatalf("Put zarr.json: %v", err)
	}

	arr, err := OpenArray(ctx, st, "edge")
	if err != nil {
		t.Fatalf("OpenArray: %v", err)
	}

	if rows, cols := arr.ChunkDims(0, 0); rows != 2 || cols != 2 {
		t.Errorf("ChunkDims(0,0) = (%d,%d), want (2,2)", rows, cols)
	}
	if rows, cols := arr.ChunkDims(2, 0); rows != 1 || cols != 2 {
		t.Errorf("ChunkDims(2,0) = (%d,%d), want (1,2) (bottom edge)", rows, cols)
	}
	if rows, cols := arr.ChunkDims(0, 1); rows != 2 || cols != 1 {
		t.Errorf("ChunkDims(0,1) = (%d,%d), want (2,1) (right edge)", rows, cols)
	}
	if rows, cols := arr.ChunkDims(2, 1); rows != 1 || cols != 1 {
		t.Errorf("ChunkDims(2,1) = (%d,%d), want (1,1) (bottom-right corner)", rows, cols)
	}

	// The bottom-edge chunk (2,0) is physically 1x2, not 2x2: it must
	// decode without tripping ReadChunk's size check, and must not be
	// padded out with an extra row.
	bottomEdge := []float32{9, 10}
	if err := st.Put(ctx, "edge/c/2/0", float32ToBytes(bottomEdge)); err != nil {
		t.Fatalf("Put chunk: %v", err)
	}
	got, err := arr.ReadChunk(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ReadChunk edge chunk: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	for i, v := range bottomEdge {
		if got[i] != v {
			t.Errorf("got[%d] = %v, want %v", i, got[i], v)
		}
	}

	// A missing edge chunk must synthesize a fill buffer sized to its
	// actual (clamped) dims, not the full configured chunk_shape.
	gotMissing, err := arr.ReadChunk(ctx, 0, 1)
	if err != nil {
		t.Fatalf("ReadChunk missing edge chunk: %v", err)
	}
	if len(gotMissing) != 2 {
		t.Fatalf("len(gotMissing) = %d, want 2", len(gotMissing))
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("models/gfs/tmp2m/0")
	b := Fingerprint("models/gfs/tmp2m/0")
	if a != b {
		t.Errorf("Fingerprint not stable across calls")
	}
	if a == Fingerprint("models/gfs/tmp2m/1") {
		t.Errorf("Fingerprint collision between distinct paths")
	}
}
