package session

import (
	"context"
	"sync"
)

// StoreFactory builds the Store for a newly seen browser. The refresh
// credential is whatever cookie the browser presented, possibly empty.
type StoreFactory func(refreshCredential string) *Store

// Registry owns one Store per gateway session id. The first resolution
// of an id runs the silent refresh exactly once; concurrent requests for
// the same browser share that attempt instead of racing their own.
type Registry struct {
	factory StoreFactory

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	store *Store
	once  sync.Once
}

func NewRegistry(factory StoreFactory) *Registry {
	return &Registry{factory: factory, entries: make(map[string]*registryEntry)}
}

// Resolve returns the Store for id, creating it and running its initial
// silent refresh on first sight.
func (r *Registry) Resolve(ctx context.Context, id, refreshCredential string) *Store {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if !ok {
		entry = &registryEntry{store: r.factory(refreshCredential)}
		r.entries[id] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.store.SilentRefresh(ctx)
	})
	return entry.store
}

// Drop forgets the Store for id. The next request with the same cookie
// starts from scratch.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Len reports how many browsers currently hold a Store.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
