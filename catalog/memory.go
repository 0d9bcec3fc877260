package catalog

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/stormcast-io/wxgrid/internal/obslog"
	"github.com/stormcast-io/wxgrid/projection"
	"github.com/stormcast-io/wxgrid/wxerr"
)

// key identifies one catalog row, matching spec.md §3's uniqueness rule:
// keys are unique per (model, parameter, level, reference_time, forecast_hour).
type key struct {
	model         string
	parameter     string
	level         string
	referenceTime time.Time
	forecastHour  int
}

// Memory is an in-process Catalog backed by a plain map, guarded by a
// read-write mutex since lookups vastly outnumber publications. Entries
// are append-only per spec.md §3; Put replaces an existing key only via
// an explicit call, modeling the spec's "atomic rename" replacement.
type Memory struct {
	mu      sync.RWMutex
	entries map[key]Entry
	logger  *slog.Logger
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{entries: make(map[key]Entry)}
}

// SetLogger installs l as the catalog's structured logger; passing nil
// reverts to the discard default.
func (m *Memory) SetLogger(l *slog.Logger) { m.logger = l }

// Put inserts or atomically replaces one catalog entry.
func (m *Memory) Put(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key{e.Model, e.Parameter, e.Level, e.ReferenceTime, e.ForecastHour}] = e
}

func (m *Memory) ListModels(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range m.entries {
		seen[k.model] = struct{}{}
	}
	return sortedKeys(seen), nil
}

func (m *Memory) ListParameters(ctx context.Context, model string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range m.entries {
		if k.model == model {
			seen[k.parameter] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

func (m *Memory) GetAvailableLevels(ctx context.Context, model, parameter string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range m.entries {
		if k.model == model && k.parameter == parameter {
			seen[k.level] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

func (m *Memory) GetAvailableTimes(ctx context.Context, model, parameter string) ([]TimeKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []TimeKey
	for k := range m.entries {
		if k.model == model && k.parameter == parameter {
			out = append(out, TimeKey{ReferenceTime: k.referenceTime, ForecastHour: k.forecastHour})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReferenceTime.Equal(out[j].ReferenceTime) {
			return out[i].ReferenceTime.Before(out[j].ReferenceTime)
		}
		return out[i].ForecastHour < out[j].ForecastHour
	})
	return out, nil
}

func (m *Memory) Lookup(ctx context.Context, model, parameter, level string, referenceTime time.Time, forecastHour int) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key{model, parameter, level, referenceTime, forecastHour}]
	if !ok {
		obslog.Or(m.logger).Debug("catalog lookup miss", "model", model, "parameter", parameter, "level", level)
		return Entry{}, wxerr.New(wxerr.NotFound, "no catalog entry for the requested model/parameter/level/time")
	}
	return e, nil
}

func (m *Memory) GetBBox(ctx context.Context, model string) (projection.BBox, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var bbox projection.BBox
	found := false
	for k, e := range m.entries {
		if k.model != model {
			continue
		}
		if !found {
			bbox = e.BBox
			found = true
			continue
		}
		bbox = unionBBox(bbox, e.BBox)
	}
	if !found {
		return projection.BBox{}, wxerr.New(wxerr.NotFound, "no catalog entries for model")
	}
	return bbox, nil
}

func (m *Memory) GetTemporalExtent(ctx context.Context, model string) (earliest, latest time.Time, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	found := false
	for k := range m.entries {
		if k.model != model {
			continue
		}
		if !found {
			earliest, latest = k.referenceTime, k.referenceTime
			found = true
			continue
		}
		if k.referenceTime.Before(earliest) {
			earliest = k.referenceTime
		}
		if k.referenceTime.After(latest) {
			latest = k.referenceTime
		}
	}
	if !found {
		return time.Time{}, time.Time{}, wxerr.New(wxerr.NotFound, "no catalog entries for model")
	}
	return earliest, latest, nil
}

func (m *Memory) Latest(ctx context.Context, model, parameter, level string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best Entry
	found := false
	for k, e := range m.entries {
		if k.model != model || k.parameter != parameter || k.level != level {
			continue
		}
		if !found || k.referenceTime.After(best.ReferenceTime) ||
			(k.referenceTime.Equal(best.ReferenceTime) && k.forecastHour > best.ForecastHour) {
			best = e
			found = true
		}
	}
	if !found {
		return Entry{}, wxerr.New(wxerr.NotFound, "no catalog entries for model/parameter/level")
	}
	return best, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func unionBBox(a, b projection.BBox) projection.BBox {
	return projection.BBox{
		MinLon: min(a.MinLon, b.MinLon),
		MinLat: min(a.MinLat, b.MinLat),
		MaxLon: max(a.MaxLon, b.MaxLon),
		MaxLat: max(a.MaxLat, b.MaxLat),
	}
}
