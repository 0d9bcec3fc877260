package store

import "encoding/json"

// Metadata is a Zarr-V3 array's zarr.json document: shape, chunk grid,
// codecs, fill value and dtype, per spec.md §6. Generalizes
// TuSKan-go-zarr/reader.go's v2 `.zarray` Metadata to the v3 document shape
// (zarr_format=3, node_type, chunk_grid/chunk_key_encoding objects instead
// of flat `chunks`/`dimension_separator` fields).
type Metadata struct {
	ZarrFormat int             `json:"zarr_format"`
	NodeType   string          `json:"node_type"`
	Shape      []int           `json:"shape"`
	DataType   string          `json:"data_type"`
	FillValue  json.RawMessage `json:"fill_value"`
	ChunkGrid  ChunkGrid       `json:"chunk_grid"`
	ChunkKey   ChunkKeyEncoding `json:"chunk_key_encoding"`
	Codecs     []CodecConfig   `json:"codecs"`
}

// ChunkGrid describes the regular chunk grid configuration.
type ChunkGrid struct {
	Name          string        `json:"name"` // "regular"
	Configuration ChunkGridConf `json:"configuration"`
}

type ChunkGridConf struct {
	ChunkShape []int `json:"chunk_shape"`
}

// ChunkKeyEncoding describes how chunk coordinates map to storage keys.
type ChunkKeyEncoding struct {
	Name          string              `json:"name"` // "default"
	Configuration ChunkKeyEncodingConf `json:"configuration"`
}

type ChunkKeyEncodingConf struct {
	Separator string `json:"separator"` // "/"
}

// CodecConfig names one entry of the ordered codec pipeline.
type CodecConfig struct {
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// LoadMetadata parses a zarr.json document.
func LoadMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Marshal serializes the metadata back to zarr.json bytes.
func (m *Metadata) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ChunkShape returns the configured chunk dimensions.
func (m *Metadata) ChunkShape() []int {
	return m.ChunkGrid.Configuration.ChunkShape
}

// NumChunks returns ceil(shape[i] / chunk_shape[i]) per dimension.
func (m *Metadata) NumChunks() []int {
	shape := m.Shape
	chunks := m.ChunkShape()
	out := make([]int, len(shape))
	for i := range shape {
		out[i] = (shape[i] + chunks[i] - 1) / chunks[i]
	}
	return out
}

// CodecNames returns the configured codec pipeline's names, in order.
func (m *Metadata) CodecNames() []string {
	names := make([]string, len(m.Codecs))
	for i, c := range m.Codecs {
		names[i] = c.Name
	}
	return names
}

// MultiscaleLevel describes one level of a sibling .multiscale.json pyramid
// manifest, per spec.md §6.
type MultiscaleLevel struct {
	Path             string `json:"path"`
	Shape            []int  `json:"shape"`
	ChunkShape       []int  `json:"chunk_shape"`
	DownsampleFactor int    `json:"downsample_factor"`
}

// Multiscale is the .multiscale.json document enumerating pyramid levels,
// levels[0] being native resolution.
type Multiscale struct {
	Levels []MultiscaleLevel `json:"levels"`
}

// LoadMultiscale parses a .multiscale.json document.
func LoadMultiscale(data []byte) (*Multiscale, error) {
	var ms Multiscale
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, err
	}
	return &ms, nil
}
