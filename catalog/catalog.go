// Package catalog defines the abstract lookup contract of spec.md §6 —
// "given (model, parameter, level, reference-time, forecast-hour) return
// the chunked-store path and metadata" — and two concrete implementations:
// an in-memory reference store for tests and small deployments, and a
// sqlite-backed store for a real deployment. Per spec.md §1, the catalog
// itself (a relational store) is an external collaborator; this package
// only specifies and implements the read contract the resolver depends on.
package catalog

import (
	"context"
	"time"

	"github.com/stormcast-io/wxgrid/projection"
)

// Entry is one (model, parameter, level, reference_time, forecast_hour)
// catalog row, per spec.md §3's Catalog entry data model.
type Entry struct {
	Model         string
	Parameter     string
	Level         string
	ReferenceTime time.Time
	ForecastHour  int

	StorePath  string
	BBox       projection.BBox
	Shape      [2]int
	ChunkShape [2]int
	ValidTime  time.Time
	Units      string
	NativeCRS  string

	// MissingSentinels lists additional fill values beyond NaN (e.g. MRMS's
	// -99/-999 markers), resolving spec.md §9's per-layer sentinel Open
	// Question at the catalog-entry level rather than a global constant.
	MissingSentinels []float64
}

// Catalog is the abstract interface spec.md §6 names: list_models,
// list_parameters, get_available_levels, get_available_times, lookup,
// get_bbox, get_temporal_extent.
type Catalog interface {
	// ListModels returns every known model identifier.
	ListModels(ctx context.Context) ([]string, error)

	// ListParameters returns every parameter published for model.
	ListParameters(ctx context.Context, model string) ([]string, error)

	// GetAvailableLevels returns every level published for
	// (model, parameter).
	GetAvailableLevels(ctx context.Context, model, parameter string) ([]string, error)

	// GetAvailableTimes returns every (reference_time, forecast_hour) pair
	// published for (model, parameter), ordered oldest first.
	GetAvailableTimes(ctx context.Context, model, parameter string) ([]TimeKey, error)

	// Lookup resolves one catalog entry. Returns a NotFound wxerr.Error if
	// no matching entry exists.
	Lookup(ctx context.Context, model, parameter, level string, referenceTime time.Time, forecastHour int) (Entry, error)

	// GetBBox returns the geographic coverage of model.
	GetBBox(ctx context.Context, model string) (projection.BBox, error)

	// GetTemporalExtent returns the earliest and latest reference_time
	// published for model.
	GetTemporalExtent(ctx context.Context, model string) (earliest, latest time.Time, err error)

	// Latest resolves the "current" sentinel time of spec.md §4.12 step 1
	// to the most recent (reference_time, forecast_hour) entry for
	// (model, parameter, level).
	Latest(ctx context.Context, model, parameter, level string) (Entry, error)
}

// TimeKey identifies one published forecast cycle/hour pair.
type TimeKey struct {
	ReferenceTime time.Time
	ForecastHour  int
}
