// Package registry provides read-only artist profile lookups used to
// decorate scored results. Absence of a profile never prevents scoring
// when an aggregate exists.
package registry

import (
	"context"
	"sync"
)

// Profile is the decoration attached to a scored entity.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Registry is the read-only profile lookup consumed by the engine.
type Registry interface {
	// GetEntityByID returns the profile for id; false when unknown.
	GetEntityByID(ctx context.Context, id string) (Profile, bool)
}

// InMemory implements Registry with a mutex-guarded map. The platform's
// artist CRUD populates it; the engine only reads.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewInMemory creates an empty profile registry.
func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[string]Profile)}
}

// Put inserts or replaces a profile.
func (r *InMemory) Put(ctx context.Context, p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
}

// GetEntityByID returns the profile for id; false when unknown.
func (r *InMemory) GetEntityByID(ctx context.Context, id string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	return p, ok
}

// IDs returns all registered profile ids.
func (r *InMemory) IDs(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		out = append(out, id)
	}
	return out
}
