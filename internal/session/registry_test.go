package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandeepkv93/storefront-session-gateway/internal/cache"
	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
	"github.com/sandeepkv93/storefront-session-gateway/internal/token"
)

type countingIdentity struct {
	refreshes atomic.Int64
}

func (c *countingIdentity) Refresh(ctx context.Context, refreshCredential string) (string, error) {
	c.refreshes.Add(1)
	return "", context.Canceled
}

func (c *countingIdentity) Logout(ctx context.Context, refreshCredential string) error { return nil }

func newTestRegistry(identity *countingIdentity) *Registry {
	return NewRegistry(func(refreshCredential string) *Store {
		return NewStore(Deps{
			Codec:         token.NewCodec(),
			Identity:      identity,
			Companies:     &fakeCompany{},
			Subscriptions: &fakeSubscriptions{},
			Inventory:     &fakeInventory{items: map[string][]domain.InventoryItem{}},
			Preferences:   newFakePrefs(),
			Cache:         cache.NewNoopInventoryCacheStore(),
		}, refreshCredential)
	})
}

func TestResolveReturnsSameStorePerID(t *testing.T) {
	reg := newTestRegistry(&countingIdentity{})
	ctx := context.Background()

	a := reg.Resolve(ctx, "browser-a", "")
	if got := reg.Resolve(ctx, "browser-a", ""); got != a {
		t.Fatal("same id must resolve the same store")
	}
	if got := reg.Resolve(ctx, "browser-b", ""); got == a {
		t.Fatal("distinct ids must not share a store")
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", reg.Len())
	}
}

func TestResolveRunsSilentRefreshExactlyOnce(t *testing.T) {
	identity := &countingIdentity{}
	reg := newTestRegistry(identity)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Resolve(ctx, "browser-a", "cred")
		}()
	}
	wg.Wait()

	if n := identity.refreshes.Load(); n != 1 {
		t.Fatalf("expected exactly one silent refresh, got %d", n)
	}

	store := reg.Resolve(ctx, "browser-a", "cred")
	deadline := time.After(time.Second)
	for store.Loading() {
		select {
		case <-deadline:
			t.Fatal("store never left loading")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestDropForgetsStore(t *testing.T) {
	identity := &countingIdentity{}
	reg := newTestRegistry(identity)
	ctx := context.Background()

	first := reg.Resolve(ctx, "browser-a", "")
	reg.Drop("browser-a")
	second := reg.Resolve(ctx, "browser-a", "")
	if first == second {
		t.Fatal("dropped id must produce a fresh store")
	}
	if n := identity.refreshes.Load(); n != 2 {
		t.Fatalf("fresh store should refresh again, got %d refreshes", n)
	}
}
