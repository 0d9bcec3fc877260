package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 1024, cfg.ChunkCacheSizeMB)
	require.Equal(t, 512, cfg.ZarrChunkSize)
	require.Equal(t, CompressionBloscZstd, cfg.ZarrCompression)
	require.Equal(t, 1, cfg.ZarrCompressionLevel)
	require.True(t, cfg.ZarrShuffle)
	require.Equal(t, InterpolationBilinear, cfg.GridInterpolation)
	require.Equal(t, int64(1024*1024*1024), cfg.ChunkCacheSizeBytes())
}

func TestLoadHonorsEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHUNK_CACHE_SIZE_MB", "2048")
	t.Setenv("ZARR_COMPRESSION", "LZ4")
	t.Setenv("GRID_INTERPOLATION", "cubic")
	t.Setenv("ZARR_COMPRESSION_LEVEL", "9")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2048, cfg.ChunkCacheSizeMB)
	require.Equal(t, CompressionLZ4, cfg.ZarrCompression)
	require.Equal(t, InterpolationCubic, cfg.GridInterpolation)
	require.Equal(t, 9, cfg.ZarrCompressionLevel)
}

func TestUnrecognizedCompressionFallsBackToBloscZstd(t *testing.T) {
	require.Equal(t, CompressionBloscZstd, parseZarrCompression("nonsense"))
}

func TestValidateRejectsOutOfRangeCompressionLevel(t *testing.T) {
	cfg := Config{
		ChunkCacheSizeMB: 1, ZarrChunkSize: 1, ZarrCompressionLevel: 0,
		TileCacheMB: 1, TileCacheTTLSecs: 1,
	}
	require.Error(t, cfg.Validate())

	cfg.ZarrCompressionLevel = 10
	require.Error(t, cfg.Validate())
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CHUNK_CACHE_SIZE_MB", "ZARR_CHUNK_SIZE", "ZARR_COMPRESSION",
		"ZARR_COMPRESSION_LEVEL", "ZARR_SHUFFLE", "GRID_INTERPOLATION",
		"TILE_CACHE_MB", "TILE_CACHE_TTL_SECS",
	} {
		os.Unsetenv(k)
	}
}
