package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/playback/core"
)

// Scope filters List results.
type Scope string

const (
	// ScopeAll lists every experience. It is the zero value.
	ScopeAll Scope = ""
	// ScopeSystem lists only experiences flagged as system experiences.
	ScopeSystem Scope = "system"
)

// ParseScope maps a query value onto a Scope; anything but "system" is ScopeAll.
func ParseScope(s string) Scope {
	if s == string(ScopeSystem) {
		return ScopeSystem
	}
	return ScopeAll
}

// CatalogSource is the part of the data service the registry depends on.
type CatalogSource interface {
	Experiences(ctx context.Context) core.Catalog
}

// InMemoryRegistry is a process local catalog safe for concurrent access.
// Returned summaries are copies.
type InMemoryRegistry struct {
	mu      sync.RWMutex
	loaded  bool
	entries []core.ExperienceSummary
	byID    map[string]int
}

// New constructs an empty registry.
func New() *InMemoryRegistry {
	return &InMemoryRegistry{byID: make(map[string]int)}
}

// NewWith constructs a registry preloaded with entries. Later Load calls are
// no-ops.
func NewWith(entries ...core.ExperienceSummary) *InMemoryRegistry {
	r := New()
	r.storeLocked(entries)
	r.loaded = true
	return r
}

// Load fetches the catalog once. Subsequent calls return nil without a
// round trip, even if the first load failed; there is no retry.
func (r *InMemoryRegistry) Load(ctx context.Context, src CatalogSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	r.loaded = true

	catalog := src.Experiences(ctx)
	if !catalog.Success {
		return fmt.Errorf("%w: %s", core.ErrRegistryUnavailable, catalog.Message)
	}
	r.storeLocked(catalog.Experiences)
	return nil
}

// Loaded reports whether Load (or NewWith) already ran.
func (r *InMemoryRegistry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// List returns the experiences in catalog order that fall in scope.
func (r *InMemoryRegistry) List(scope Scope) []core.ExperienceSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ExperienceSummary, 0, len(r.entries))
	for _, e := range r.entries {
		if scope == ScopeSystem && !e.System {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Find returns the cached experience with id.
func (r *InMemoryRegistry) Find(id string) (core.ExperienceSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return core.ExperienceSummary{}, false
	}
	return r.entries[i], true
}

// storeLocked replaces the catalog; duplicate ids keep the last entry.
// Caller must hold the write lock.
func (r *InMemoryRegistry) storeLocked(entries []core.ExperienceSummary) {
	r.entries = r.entries[:0]
	r.byID = make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := r.byID[e.ID]; ok {
			r.entries[i] = e
			continue
		}
		r.byID[e.ID] = len(r.entries)
		r.entries = append(r.entries, e)
	}
}
