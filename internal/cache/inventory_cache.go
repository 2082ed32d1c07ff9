package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
)

// InventoryCacheStore caches the per-store inventory list the session
// layer refetches on every session or store change.
type InventoryCacheStore interface {
	Get(ctx context.Context, storeID string) ([]domain.InventoryItem, bool, error)
	Set(ctx context.Context, storeID string, items []domain.InventoryItem, ttl time.Duration) error
	Invalidate(ctx context.Context, storeID string) error
	InvalidateAll(ctx context.Context) error
}

type NoopInventoryCacheStore struct{}

func NewNoopInventoryCacheStore() *NoopInventoryCacheStore { return &NoopInventoryCacheStore{} }

func (s *NoopInventoryCacheStore) Get(context.Context, string) ([]domain.InventoryItem, bool, error) {
	return nil, false, nil
}

func (s *NoopInventoryCacheStore) Set(context.Context, string, []domain.InventoryItem, time.Duration) error {
	return nil
}

func (s *NoopInventoryCacheStore) Invalidate(context.Context, string) error { return nil }

func (s *NoopInventoryCacheStore) InvalidateAll(context.Context) error { return nil }

type inMemoryEntry struct {
	items     []domain.InventoryItem
	expiresAt time.Time
}

type InMemoryInventoryCacheStore struct {
	mu    sync.RWMutex
	store map[string]inMemoryEntry
}

func NewInMemoryInventoryCacheStore() *InMemoryInventoryCacheStore {
	return &InMemoryInventoryCacheStore{store: make(map[string]inMemoryEntry)}
}

func (s *InMemoryInventoryCacheStore) Get(_ context.Context, storeID string) ([]domain.InventoryItem, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	entry, ok := s.store[storeID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.store, storeID)
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]domain.InventoryItem(nil), entry.items...), true, nil
}

func (s *InMemoryInventoryCacheStore) Set(_ context.Context, storeID string, items []domain.InventoryItem, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[storeID] = inMemoryEntry{
		items:     append([]domain.InventoryItem(nil), items...),
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *InMemoryInventoryCacheStore) Invalidate(_ context.Context, storeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, storeID)
	return nil
}

func (s *InMemoryInventoryCacheStore) InvalidateAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = make(map[string]inMemoryEntry)
	return nil
}
