package resolver

import (
	"sync"

	"github.com/stormcast-io/wxgrid/style"
	"github.com/stormcast-io/wxgrid/wxerr"
)

// CompiledStyle bundles a style with its precomputed palette and, when the
// style's interior resolves to at most 256 distinct colors, its indexed
// palette, per spec.md §4.10.
type CompiledStyle struct {
	Style   *style.Style
	Palette *style.Palette
	Indexed *style.IndexedPalette // nil when the style needs full RGBA
}

// StyleRegistry compiles each style exactly once and shares the result
// thereafter, per spec.md §9's "precomputed palettes... immutable after
// first compile, shared by Arc-like ownership" design note. A swap (hot
// reload) replaces the whole map under the write lock; readers in flight
// keep their already-resolved *CompiledStyle.
type StyleRegistry struct {
	mu      sync.RWMutex
	compiled map[string]*CompiledStyle
}

// NewStyleRegistry compiles every style in styles up front.
func NewStyleRegistry(styles map[string]*style.Style) *StyleRegistry {
	reg := &StyleRegistry{compiled: make(map[string]*CompiledStyle, len(styles))}
	reg.Reload(styles)
	return reg
}

// Reload recompiles the registry's full style set and swaps it in under
// the write lock, invalidating nothing else (callers are responsible for
// invalidating the L1 tile cache, per spec.md §5's "Layer configuration...
// invalidates the L1 tile cache").
func (r *StyleRegistry) Reload(styles map[string]*style.Style) {
	next := make(map[string]*CompiledStyle, len(styles))
	for id, s := range styles {
		p := style.NewPalette(s)
		cs := &CompiledStyle{Style: s, Palette: p}
		if ip, ok := style.BuildIndexed(p); ok {
			cs.Indexed = ip
		}
		next[id] = cs
	}

	r.mu.Lock()
	r.compiled = next
	r.mu.Unlock()
}

// Get returns the compiled style for id.
func (r *StyleRegistry) Get(id string) (*CompiledStyle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cs, ok := r.compiled[id]
	if !ok {
		return nil, wxerr.New(wxerr.NotFound, "unknown style: "+id)
	}
	return cs, nil
}
