package model

import (
	"context"
	"sort"
	"sync"
)

// Registry tracks ephemeral models that exist right now, so an interrupted
// run can dispose everything it created.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

type registryEntry struct {
	handle Handle
	client Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]registryEntry{}}
}

// Add records a live handle and the client that owns it.
func (r *Registry) Add(handle Handle, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[handle.EphemeralName] = registryEntry{handle: handle, client: client}
}

// Remove forgets a handle once it has been disposed.
func (r *Registry) Remove(handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, handle.EphemeralName)
}

// Names returns the live ephemeral names sorted for stable output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// DisposeAll disposes every live handle through its own client. Dispose
// failures are swallowed; the count reports how many entries were attempted.
func (r *Registry) DisposeAll(ctx context.Context) int {
	r.mu.Lock()
	entries := make([]registryEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	r.entries = map[string]registryEntry{}
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].handle.EphemeralName < entries[j].handle.EphemeralName
	})
	for _, entry := range entries {
		_ = entry.client.Dispose(ctx, entry.handle)
	}
	return len(entries)
}
