// Package config loads serving-path configuration from the environment
// via spf13/viper, per spec.md §6's enumerated variables. Field names and
// defaults are grounded on
// original_source/crates/grid-processor/src/config.rs's GridProcessorConfig
// (chunk_cache_size_mb=1024, zarr_chunk_size=512, zarr_compression=blosc_zstd,
// zarr_compression_level=1, interpolation=bilinear), extended with the tile
// cache and object-store variables spec.md §6 also enumerates.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ZarrCompression names a chunk codec, per spec.md §6.
type ZarrCompression string

const (
	CompressionNone     ZarrCompression = "none"
	CompressionLZ4      ZarrCompression = "lz4"
	CompressionZstd     ZarrCompression = "zstd"
	CompressionBloscLZ4 ZarrCompression = "blosc_lz4"
	CompressionBloscZstd ZarrCompression = "blosc_zstd"
)

// parseZarrCompression parses s case-insensitively, defaulting to
// blosc_zstd for any unrecognized value, mirroring config.rs's
// ZarrCompression::from_str fallback.
func parseZarrCompression(s string) ZarrCompression {
	switch strings.ToLower(s) {
	case "none":
		return CompressionNone
	case "lz4":
		return CompressionLZ4
	case "zstd":
		return CompressionZstd
	case "blosc_lz4":
		return CompressionBloscLZ4
	case "blosc_zstd":
		return CompressionBloscZstd
	default:
		return CompressionBloscZstd
	}
}

// Interpolation names a grid resampling method, per spec.md §6.
type Interpolation string

const (
	InterpolationNearest  Interpolation = "nearest"
	InterpolationBilinear Interpolation = "bilinear"
	InterpolationCubic    Interpolation = "cubic"
)

func parseInterpolation(s string) Interpolation {
	switch strings.ToLower(s) {
	case "nearest":
		return InterpolationNearest
	case "cubic":
		return InterpolationCubic
	default:
		return InterpolationBilinear
	}
}

// ObjectStore holds the object-store endpoint and credentials spec.md §6
// names as "four strings + bool allow_http".
type ObjectStore struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	AllowHTTP bool
}

// Config is the serving-path configuration of spec.md §6.
type Config struct {
	ChunkCacheSizeMB     int
	ZarrChunkSize        int
	ZarrCompression      ZarrCompression
	ZarrCompressionLevel int
	ZarrShuffle          bool
	GridInterpolation    Interpolation

	TileCacheMB       int
	TileCacheTTLSecs  int

	ObjectStore ObjectStore
}

// ChunkCacheSizeBytes returns the chunk cache budget in bytes.
func (c Config) ChunkCacheSizeBytes() int64 {
	return int64(c.ChunkCacheSizeMB) * 1024 * 1024
}

// TileCacheSizeBytes returns the L1 tile cache budget in bytes.
func (c Config) TileCacheSizeBytes() int64 {
	return int64(c.TileCacheMB) * 1024 * 1024
}

// Load reads configuration from environment variables via viper,
// applying the defaults config.rs's GridProcessorConfig::default ships.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("chunk_cache_size_mb", 1024)
	v.SetDefault("zarr_chunk_size", 512)
	v.SetDefault("zarr_compression", string(CompressionBloscZstd))
	v.SetDefault("zarr_compression_level", 1)
	v.SetDefault("zarr_shuffle", true)
	v.SetDefault("grid_interpolation", string(InterpolationBilinear))
	v.SetDefault("tile_cache_mb", 256)
	v.SetDefault("tile_cache_ttl_secs", 300)
	v.SetDefault("object_store_endpoint", "")
	v.SetDefault("object_store_access_key", "")
	v.SetDefault("object_store_secret_key", "")
	v.SetDefault("object_store_region", "")
	v.SetDefault("object_store_allow_http", false)

	for _, key := range []string{
		"chunk_cache_size_mb", "zarr_chunk_size", "zarr_compression",
		"zarr_compression_level", "zarr_shuffle", "grid_interpolation",
		"tile_cache_mb", "tile_cache_ttl_secs",
		"object_store_endpoint", "object_store_access_key",
		"object_store_secret_key", "object_store_region", "object_store_allow_http",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	cfg := Config{
		ChunkCacheSizeMB:     v.GetInt("chunk_cache_size_mb"),
		ZarrChunkSize:        v.GetInt("zarr_chunk_size"),
		ZarrCompression:      parseZarrCompression(v.GetString("zarr_compression")),
		ZarrCompressionLevel: v.GetInt("zarr_compression_level"),
		ZarrShuffle:          v.GetBool("zarr_shuffle"),
		GridInterpolation:    parseInterpolation(v.GetString("grid_interpolation")),
		TileCacheMB:          v.GetInt("tile_cache_mb"),
		TileCacheTTLSecs:     v.GetInt("tile_cache_ttl_secs"),
		ObjectStore: ObjectStore{
			Endpoint:  v.GetString("object_store_endpoint"),
			AccessKey: v.GetString("object_store_access_key"),
			SecretKey: v.GetString("object_store_secret_key"),
			Region:    v.GetString("object_store_region"),
			AllowHTTP: v.GetBool("object_store_allow_http"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration's numeric ranges, per config.rs's
// validate().
func (c Config) Validate() error {
	if c.ChunkCacheSizeMB <= 0 {
		return fmt.Errorf("chunk_cache_size_mb must be > 0")
	}
	if c.ZarrChunkSize <= 0 {
		return fmt.Errorf("zarr_chunk_size must be > 0")
	}
	if c.ZarrCompressionLevel < 1 || c.ZarrCompressionLevel > 9 {
		return fmt.Errorf("zarr_compression_level must be 1-9")
	}
	if c.TileCacheMB <= 0 {
		return fmt.Errorf("tile_cache_mb must be > 0")
	}
	if c.TileCacheTTLSecs <= 0 {
		return fmt.Errorf("tile_cache_ttl_secs must be > 0")
	}
	return nil
}
