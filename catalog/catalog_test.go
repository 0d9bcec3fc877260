package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stormcast-io/wxgrid/projection"
	"github.com/stormcast-io/wxgrid/wxerr"
)

func sampleEntry(refHour, fcstHour int) Entry {
	ref := time.Date(2026, 7, 30, refHour, 0, 0, 0, time.UTC)
	return Entry{
		Model: "gfs", Parameter: "TMP", Level: "2m",
		ReferenceTime: ref,
		ForecastHour:  fcstHour,
		StorePath:     "gfs/TMP/2m",
		BBox:          projection.BBox{MinLon: -180, MinLat: -90, MaxLon: 180, MaxLat: 90},
		Shape:         [2]int{721, 1440},
		ChunkShape:    [2]int{512, 512},
		ValidTime:     ref.Add(time.Duration(fcstHour) * time.Hour),
		Units:         "K",
		NativeCRS:     "equirectangular",
	}
}

func TestMemoryLookupAndNotFound(t *testing.T) {
	m := NewMemory()
	e := sampleEntry(0, 6)
	m.Put(e)

	ctx := context.Background()
	got, err := m.Lookup(ctx, "gfs", "TMP", "2m", e.ReferenceTime, 6)
	require.NoError(t, err)
	require.Equal(t, e.StorePath, got.StorePath)

	_, err = m.Lookup(ctx, "gfs", "TMP", "2m", e.ReferenceTime, 99)
	require.Equal(t, wxerr.NotFound, wxerr.KindOf(err))
}

func TestMemoryListingsAndLatest(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Put(sampleEntry(0, 0))
	m.Put(sampleEntry(0, 6))
	m.Put(sampleEntry(6, 0))

	models, err := m.ListModels(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"gfs"}, models)

	params, err := m.ListParameters(ctx, "gfs")
	require.NoError(t, err)
	require.Equal(t, []string{"TMP"}, params)

	levels, err := m.GetAvailableLevels(ctx, "gfs", "TMP")
	require.NoError(t, err)
	require.Equal(t, []string{"2m"}, levels)

	times, err := m.GetAvailableTimes(ctx, "gfs", "TMP")
	require.NoError(t, err)
	require.Len(t, times, 3)
	// Ordered oldest-first: (ref=0,fcst=0), (ref=0,fcst=6), (ref=6,fcst=0).
	require.Equal(t, 0, times[0].ForecastHour)
	require.Equal(t, 6, times[2].ReferenceTime.Hour())

	latest, err := m.Latest(ctx, "gfs", "TMP", "2m")
	require.NoError(t, err)
	require.Equal(t, 6, latest.ReferenceTime.Hour())
}

func TestMemoryBBoxAndTemporalExtent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	e1 := sampleEntry(0, 0)
	e1.BBox = projection.BBox{MinLon: -10, MinLat: -5, MaxLon: 10, MaxLat: 5}
	e2 := sampleEntry(6, 0)
	e2.BBox = projection.BBox{MinLon: -20, MinLat: -2, MaxLon: 8, MaxLat: 15}
	m.Put(e1)
	m.Put(e2)

	bbox, err := m.GetBBox(ctx, "gfs")
	require.NoError(t, err)
	require.Equal(t, projection.BBox{MinLon: -20, MinLat: -5, MaxLon: 10, MaxLat: 15}, bbox)

	earliest, latest, err := m.GetTemporalExtent(ctx, "gfs")
	require.NoError(t, err)
	require.True(t, earliest.Equal(e1.ReferenceTime))
	require.True(t, latest.Equal(e2.ReferenceTime))
}

func TestMemoryPreservesMissingSentinels(t *testing.T) {
	m := NewMemory()
	e := sampleEntry(0, 0)
	e.MissingSentinels = []float64{-99, -999}
	m.Put(e)

	got, err := m.Lookup(context.Background(), "gfs", "TMP", "2m", e.ReferenceTime, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{-99, -999}, got.MissingSentinels)
}

func TestSentinelEncodeDecodeRoundTrip(t *testing.T) {
	values := []float64{-99, -999, 0.5}
	got := decodeSentinels(encodeSentinels(values))
	require.Equal(t, values, got)
	require.Nil(t, decodeSentinels(""))
}

func TestMemoryUnknownModelIsNotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.GetBBox(ctx, "nonexistent")
	require.Equal(t, wxerr.NotFound, wxerr.KindOf(err))

	_, _, err = m.GetTemporalExtent(ctx, "nonexistent")
	require.Equal(t, wxerr.NotFound, wxerr.KindOf(err))
}
